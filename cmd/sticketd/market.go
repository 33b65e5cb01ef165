package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func eventFlag(cmd *cobra.Command) (common.Address, error) {
	value, _ := cmd.Flags().GetString("event")
	return parseAddr("event", value)
}

func mintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Buy a ticket from the primary market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			buyerFlag, _ := cmd.Flags().GetString("buyer")
			buyer, err := parseAddr("buyer", buyerFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, buyer)
			if err != nil {
				return err
			}

			result, err := n.invoke(cmd.Context(), auth, event, "mint_ticket", []any{buyer})
			if err != nil {
				return err
			}

			n.logger.Info("ticket minted", zap.Any("ticket_id", result), zap.String("buyer", buyer.Hex()))
			return printJSON(result)
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("buyer", "", "buyer address")
	addAsFlag(cmd)
	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer a ticket directly to another identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")
			ticketID, _ := cmd.Flags().GetUint32("ticket")

			from, err := parseAddr("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseAddr("to", toFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, from)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "transfer_ticket", []any{from, to, ticketID})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("from", "", "current owner")
	cmd.Flags().String("to", "", "new owner")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	addAsFlag(cmd)
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a ticket on the secondary market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			sellerFlag, _ := cmd.Flags().GetString("seller")
			ticketID, _ := cmd.Flags().GetUint32("ticket")
			priceFlag, _ := cmd.Flags().GetString("price")

			seller, err := parseAddr("seller", sellerFlag)
			if err != nil {
				return err
			}
			price, err := parseAmount("price", priceFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, seller)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "list_ticket", []any{seller, ticketID, price})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("seller", "", "ticket owner")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	cmd.Flags().String("price", "0", "asking price in the token's smallest unit")
	addAsFlag(cmd)
	return cmd
}

func updatePriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-price",
		Short: "Change the asking price of an active listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			sellerFlag, _ := cmd.Flags().GetString("seller")
			ticketID, _ := cmd.Flags().GetUint32("ticket")
			priceFlag, _ := cmd.Flags().GetString("price")

			seller, err := parseAddr("seller", sellerFlag)
			if err != nil {
				return err
			}
			price, err := parseAmount("price", priceFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, seller)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "update_listing_price", []any{seller, ticketID, price})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("seller", "", "listing seller")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	cmd.Flags().String("price", "0", "new asking price")
	addAsFlag(cmd)
	return cmd
}

func delistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delist",
		Short: "Withdraw a ticket from the secondary market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			sellerFlag, _ := cmd.Flags().GetString("seller")
			ticketID, _ := cmd.Flags().GetUint32("ticket")

			seller, err := parseAddr("seller", sellerFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, seller)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "delist_ticket", []any{seller, ticketID})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("seller", "", "listing seller")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	addAsFlag(cmd)
	return cmd
}

func buyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a listed ticket from the secondary market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			buyerFlag, _ := cmd.Flags().GetString("buyer")
			ticketID, _ := cmd.Flags().GetUint32("ticket")

			buyer, err := parseAddr("buyer", buyerFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, buyer)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "buy_secondary_ticket", []any{buyer, ticketID})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("buyer", "", "buyer address")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	addAsFlag(cmd)
	return cmd
}

func checkinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Mark a ticket as used at the event entrance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.done()

			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			creatorFlag, _ := cmd.Flags().GetString("creator")
			ticketID, _ := cmd.Flags().GetUint32("ticket")

			creator, err := parseAddr("creator", creatorFlag)
			if err != nil {
				return err
			}
			auth, err := authFrom(cmd, creator)
			if err != nil {
				return err
			}

			_, err = n.invoke(cmd.Context(), auth, event, "mark_ticket_used", []any{creator, ticketID})
			return err
		},
	}

	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("creator", "", "event creator address")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	addAsFlag(cmd)
	return cmd
}
