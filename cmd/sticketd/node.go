package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"sticket/internal/config"
	"sticket/internal/ledger"
	"sticket/internal/runtime"
	"sticket/internal/storage"
	"sticket/internal/storage/postgres"
)

// node bundles the open store, the runtime, and how to persist state
// after a successful invocation.
type node struct {
	logger *zap.Logger
	rt     *runtime.Runtime
	save   func() error
	close  func()
}

func openNode(cmd *cobra.Command) (*node, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var (
		store   ledger.Store
		save    = func() error { return nil }
		closeFn = func() {}
	)
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(cmd.Context(), cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = pg
		closeFn = pg.Close
	} else {
		fs, err := storage.NewFileStore(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		store = fs
		save = fs.Save
	}

	return &node{
		logger: logger,
		rt:     runtime.New(store, logger),
		save:   save,
		close:  closeFn,
	}, nil
}

func (n *node) done() {
	n.close()
	n.logger.Sync()
}

// invoke runs one invocation and persists the snapshot on success.
func (n *node) invoke(ctx context.Context, auth ledger.AuthContext, ref common.Address, method string, args []any) (any, error) {
	result, err := n.rt.Invoke(ctx, auth, ref, method, args)
	if err != nil {
		return nil, err
	}
	if err := n.save(); err != nil {
		return nil, fmt.Errorf("persist state: %w", err)
	}
	return result, nil
}

func printJSON(v any) error {
	if v == nil {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func parseAddr(flag, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("--%s: %q is not a hex address", flag, value)
	}
	return common.HexToAddress(value), nil
}

// parseHash accepts a 32-byte hex hash, or any other string which is
// hashed down to 32 bytes. Lets callers pass readable salts like
// "summer-festival-2026".
func parseHash(value string) common.Hash {
	if strings.HasPrefix(value, "0x") && len(value) == 2+2*common.HashLength {
		return common.HexToHash(value)
	}
	return common.Hash(blake3.Sum256([]byte(value)))
}

func parseAmount(flag, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("--%s: %q is not a base-10 integer", flag, value)
	}
	return amount, nil
}

// authFrom builds the invocation's authorization context from the
// --as flag, defaulting to the acting identity. The dev node trusts
// the flag; real deployments verify signatures before reaching this
// core.
func authFrom(cmd *cobra.Command, fallback ...common.Address) (ledger.AuthContext, error) {
	values, _ := cmd.Flags().GetStringSlice("as")
	if len(values) == 0 {
		return ledger.NewAuthContext(fallback...), nil
	}

	ids := make([]common.Address, 0, len(values))
	for _, value := range values {
		id, err := parseAddr("as", value)
		if err != nil {
			return ledger.AuthContext{}, err
		}
		ids = append(ids, id)
	}
	return ledger.NewAuthContext(ids...), nil
}

func addAsFlag(cmd *cobra.Command) {
	cmd.Flags().StringSlice("as", nil, "identities authorizing this invocation (default: the acting identity)")
}
