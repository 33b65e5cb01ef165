package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sticket/internal/ledger"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the factory with the ticket contract code hash",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			wasmHash, _ := cmd.Flags().GetString("wasm-hash")
			if wasmHash == "" {
				return fmt.Errorf("--wasm-hash is required")
			}

			_, err = n.invoke(cmd.Context(), ledger.NewAuthContext(),
				n.rt.FactoryAddress(), "initialize", []any{parseHash(wasmHash)})
			if err != nil {
				return err
			}

			n.logger.Info("factory initialized", zap.String("factory", n.rt.FactoryAddress().Hex()))
			return nil
		},
	}

	cmd.Flags().String("wasm-hash", "", "code hash for deployed ticket contracts")
	return cmd
}

func createEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Deploy and register a new event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			salt, _ := cmd.Flags().GetString("salt")
			creatorFlag, _ := cmd.Flags().GetString("creator")
			supply, _ := cmd.Flags().GetUint32("supply")
			priceFlag, _ := cmd.Flags().GetString("price")
			feeBps, _ := cmd.Flags().GetUint32("fee-bps")
			metadata, _ := cmd.Flags().GetString("metadata")
			name, _ := cmd.Flags().GetString("name")
			symbol, _ := cmd.Flags().GetString("symbol")
			tokenFlag, _ := cmd.Flags().GetString("token")

			creator, err := parseAddr("creator", creatorFlag)
			if err != nil {
				return err
			}
			price, err := parseAmount("price", priceFlag)
			if err != nil {
				return err
			}
			paymentToken, err := parseAddr("token", tokenFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, creator)
			if err != nil {
				return err
			}

			result, err := n.invoke(cmd.Context(), auth, n.rt.FactoryAddress(), "create_event", []any{
				parseHash(salt), creator, supply, price, feeBps, metadata, name, symbol, paymentToken,
			})
			if err != nil {
				return err
			}

			n.logger.Info("event created", zap.Any("event_contract", result))
			return printJSON(result)
		},
	}

	cmd.Flags().String("salt", "", "deployment salt (hex hash or any string)")
	cmd.Flags().String("creator", "", "event creator address")
	cmd.Flags().Uint32("supply", 0, "total ticket supply")
	cmd.Flags().String("price", "0", "primary price in the token's smallest unit")
	cmd.Flags().Uint32("fee-bps", 0, "creator fee on secondary sales, basis points")
	cmd.Flags().String("metadata", "", "event metadata URI")
	cmd.Flags().String("name", "", "event name")
	cmd.Flags().String("symbol", "", "ticket symbol")
	cmd.Flags().String("token", "", "payment token address")
	addAsFlag(cmd)
	return cmd
}

func fundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit dev payment tokens to an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			tokenFlag, _ := cmd.Flags().GetString("token")
			accountFlag, _ := cmd.Flags().GetString("account")
			amountFlag, _ := cmd.Flags().GetString("amount")

			tokenRef, err := parseAddr("token", tokenFlag)
			if err != nil {
				return err
			}
			account, err := parseAddr("account", accountFlag)
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", amountFlag)
			if err != nil {
				return err
			}

			if err := n.rt.Fund(cmd.Context(), tokenRef, account, amount); err != nil {
				return err
			}
			return n.save()
		},
	}

	cmd.Flags().String("token", "", "payment token address")
	cmd.Flags().String("account", "", "account to credit")
	cmd.Flags().String("amount", "0", "amount in the token's smallest unit")
	return cmd
}
