// Package runtime hosts the contracts in-process: it implements the
// deploy/invoke boundary the factory depends on, scopes each instance
// to its own slice of storage, and runs every invocation as one atomic
// step over a write-buffering overlay.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sticket/internal/ledger"
	"sticket/internal/token"
)

var (
	ErrUnknownInstance = errors.New("unknown contract instance")
	ErrUnknownMethod   = errors.New("unknown method")
)

// Runtime executes contract invocations against a base store.
type Runtime struct {
	base        ledger.Store
	logger      *zap.Logger
	now         func() uint64
	factoryAddr common.Address
}

// Option customizes a Runtime.
type Option func(*Runtime)

// WithClock replaces the ledger clock, mainly for tests.
func WithClock(now func() uint64) Option {
	return func(r *Runtime) { r.now = now }
}

// New builds a Runtime over base.
func New(base ledger.Store, logger *zap.Logger, opts ...Option) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		base:        base,
		logger:      logger,
		now:         func() uint64 { return uint64(time.Now().Unix()) },
		factoryAddr: FactoryAddress(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FactoryAddress returns the address the factory is hosted at.
func (r *Runtime) FactoryAddress() common.Address {
	return r.factoryAddr
}

// Invoke runs one contract method as an atomic ledger step: all writes
// commit together on success, and an error discards every write the
// invocation made, including writes from nested cross-contract calls.
func (r *Runtime) Invoke(ctx context.Context, auth ledger.AuthContext, ref common.Address, method string, args []any) (any, error) {
	overlay := ledger.NewOverlay(r.base)
	s := &session{rt: r, store: overlay, auth: auth}

	result, err := s.Invoke(ctx, ref, method, args)
	if err != nil {
		r.logger.Warn("invocation aborted",
			zap.String("instance", ref.Hex()),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}

	if err := overlay.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invocation: %w", err)
	}

	r.logger.Info("invocation committed",
		zap.String("instance", ref.Hex()),
		zap.String("method", method),
	)
	return result, nil
}

// Fund credits dev payment tokens to an account, outside any contract.
func (r *Runtime) Fund(ctx context.Context, tokenRef, to common.Address, amount *big.Int) error {
	overlay := ledger.NewOverlay(r.base)
	if err := token.New(overlay, tokenRef).Mint(ctx, to, amount); err != nil {
		return err
	}
	if err := overlay.Commit(ctx); err != nil {
		return fmt.Errorf("commit funding: %w", err)
	}
	r.logger.Info("account funded",
		zap.String("token", tokenRef.Hex()),
		zap.String("account", to.Hex()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// BalanceOf reads a token balance.
func (r *Runtime) BalanceOf(ctx context.Context, tokenRef, owner common.Address) (*big.Int, error) {
	return token.New(r.base, tokenRef).BalanceOf(ctx, owner)
}

// instanceRecord registers a deployed contract in host storage.
type instanceRecord struct {
	CodeHash  common.Hash `cbor:"code_hash"`
	CreatedAt uint64      `cbor:"created_at"`
}

func keyInstance(addr common.Address) []byte {
	return ledger.Key("Instance", addr)
}

func contractPrefix(addr common.Address) []byte {
	return append([]byte("c/"), addr.Bytes()...)
}

// session is one atomic step: every store it hands out, for contracts
// and token balances alike, is backed by the same overlay.
type session struct {
	rt    *Runtime
	store ledger.Store
	auth  ledger.AuthContext
}

func (s *session) env(ctx context.Context, ref common.Address) *ledger.Env {
	return &ledger.Env{
		Store:  ledger.NewPrefixStore(s.store, contractPrefix(ref)),
		Auth:   s.auth,
		Tokens: token.NewBank(s.store),
		Ctx:    ctx,
		Now:    s.rt.now,
	}
}

// Deploy registers a new ticket ledger instance at the address derived
// from the factory address and salt.
func (s *session) Deploy(ctx context.Context, codeHash common.Hash, salt common.Hash) (common.Address, error) {
	addr := ContractAddress(s.rt.factoryAddr, salt)

	ok, err := ledger.Has(ctx, s.store, keyInstance(addr))
	if err != nil {
		return common.Address{}, err
	}
	if ok {
		return common.Address{}, fmt.Errorf("%w: contract already deployed at %s", ledger.ErrAlreadyInitialized, addr.Hex())
	}

	record := instanceRecord{CodeHash: codeHash, CreatedAt: s.rt.now()}
	if err := ledger.Put(ctx, s.store, keyInstance(addr), record); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// Invoke dispatches a method to an instance within this session.
func (s *session) Invoke(ctx context.Context, ref common.Address, method string, args []any) (any, error) {
	if ref == s.rt.factoryAddr {
		return s.dispatchFactory(ctx, ref, method, args)
	}

	ok, err := ledger.Has(ctx, s.store, keyInstance(ref))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, ref.Hex())
	}
	return s.dispatchTicket(ctx, ref, method, args)
}
