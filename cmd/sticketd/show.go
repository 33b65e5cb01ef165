package main

import (
	"github.com/spf13/cobra"

	"sticket/internal/ledger"
)

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Read registry, ticket, and market state",
	}

	cmd.AddCommand(
		showEventsCmd(),
		showEventCmd(),
		showCreatorEventsCmd(),
		showInfoCmd(),
		showTicketCmd(),
		showListingsCmd(),
		showTicketsOfCmd(),
		showBalanceCmd(),
	)
	return cmd
}

// read runs a read-only invocation with an empty auth context and
// prints the result.
func read(cmd *cobra.Command, fn func(n *node) (any, error)) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.done()

	result, err := fn(n)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func showEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "All registered events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					n.rt.FactoryAddress(), "get_all_events", nil)
			})
		},
	}
}

func showEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "One event record by ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetUint32("id")
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					n.rt.FactoryAddress(), "get_event", []any{id})
			})
		},
	}
	cmd.Flags().Uint32("id", 0, "event ID")
	return cmd
}

func showCreatorEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creator-events",
		Short: "Events deployed by one creator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creatorFlag, _ := cmd.Flags().GetString("creator")
			creator, err := parseAddr("creator", creatorFlag)
			if err != nil {
				return err
			}
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					n.rt.FactoryAddress(), "get_creator_events", []any{creator})
			})
		},
	}
	cmd.Flags().String("creator", "", "event creator address")
	return cmd
}

func showInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Event configuration of a ticket ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					event, "get_event_info", nil)
			})
		},
	}
	cmd.Flags().String("event", "", "ticket ledger address")
	return cmd
}

func showTicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "One ticket's state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetUint32("ticket")
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					event, "get_ticket", []any{id})
			})
		},
	}
	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().Uint32("ticket", 0, "ticket ID")
	return cmd
}

func showListingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "All active secondary listings of an event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					event, "get_all_secondary_listings", nil)
			})
		},
	}
	cmd.Flags().String("event", "", "ticket ledger address")
	return cmd
}

func showTicketsOfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets-of",
		Short: "Ticket IDs owned by one identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := eventFlag(cmd)
			if err != nil {
				return err
			}
			userFlag, _ := cmd.Flags().GetString("user")
			user, err := parseAddr("user", userFlag)
			if err != nil {
				return err
			}
			return read(cmd, func(n *node) (any, error) {
				return n.rt.Invoke(cmd.Context(), ledger.NewAuthContext(),
					event, "get_user_tickets", []any{user})
			})
		},
	}
	cmd.Flags().String("event", "", "ticket ledger address")
	cmd.Flags().String("user", "", "owner address")
	return cmd
}

func showBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Payment-token balance of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenFlag, _ := cmd.Flags().GetString("token")
			accountFlag, _ := cmd.Flags().GetString("account")

			tokenRef, err := parseAddr("token", tokenFlag)
			if err != nil {
				return err
			}
			account, err := parseAddr("account", accountFlag)
			if err != nil {
				return err
			}
			return read(cmd, func(n *node) (any, error) {
				balance, err := n.rt.BalanceOf(cmd.Context(), tokenRef, account)
				if err != nil {
					return nil, err
				}
				return balance.String(), nil
			})
		},
	}
	cmd.Flags().String("token", "", "payment token address")
	cmd.Flags().String("account", "", "account address")
	return cmd
}
