package runtime

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/contract/factory"
	"sticket/internal/contract/ticket"
)

// Wire methods take a fixed, ordered argument list; the helpers below
// check position and type and name the mismatch.

func wantArgs(method string, args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: want %d arguments, got %d", method, n, len(args))
	}
	return nil
}

func argAddr(method string, args []any, i int) (common.Address, error) {
	addr, ok := args[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: argument %d: want address, got %T", method, i, args[i])
	}
	return addr, nil
}

func argHash(method string, args []any, i int) (common.Hash, error) {
	hash, ok := args[i].(common.Hash)
	if !ok {
		return common.Hash{}, fmt.Errorf("%s: argument %d: want hash, got %T", method, i, args[i])
	}
	return hash, nil
}

func argU32(method string, args []any, i int) (uint32, error) {
	v, ok := args[i].(uint32)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d: want uint32, got %T", method, i, args[i])
	}
	return v, nil
}

func argBig(method string, args []any, i int) (*big.Int, error) {
	v, ok := args[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: want amount, got %T", method, i, args[i])
	}
	return v, nil
}

func argString(method string, args []any, i int) (string, error) {
	v, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d: want string, got %T", method, i, args[i])
	}
	return v, nil
}

func (s *session) dispatchFactory(ctx context.Context, ref common.Address, method string, args []any) (any, error) {
	c := factory.New(s.env(ctx, ref), s)

	switch method {
	case "initialize":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		hash, err := argHash(method, args, 0)
		if err != nil {
			return nil, err
		}
		return nil, c.Initialize(hash)

	case "create_event":
		p, err := createEventParams(method, args)
		if err != nil {
			return nil, err
		}
		return c.CreateEvent(p)

	case "get_event":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.GetEvent(id)

	case "get_all_events":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetAllEvents()

	case "get_creator_events":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		creator, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.GetCreatorEvents(creator)

	case "get_event_count":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetEventCount()

	case "get_wasm_hash":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetWasmHash()
	}

	return nil, fmt.Errorf("%w: factory has no method %q", ErrUnknownMethod, method)
}

func createEventParams(method string, args []any) (factory.CreateEventParams, error) {
	if err := wantArgs(method, args, 9); err != nil {
		return factory.CreateEventParams{}, err
	}

	var p factory.CreateEventParams
	var err error
	if p.Salt, err = argHash(method, args, 0); err != nil {
		return p, err
	}
	if p.EventCreator, err = argAddr(method, args, 1); err != nil {
		return p, err
	}
	if p.TotalSupply, err = argU32(method, args, 2); err != nil {
		return p, err
	}
	if p.PrimaryPrice, err = argBig(method, args, 3); err != nil {
		return p, err
	}
	if p.CreatorFeeBps, err = argU32(method, args, 4); err != nil {
		return p, err
	}
	if p.EventMetadata, err = argString(method, args, 5); err != nil {
		return p, err
	}
	if p.Name, err = argString(method, args, 6); err != nil {
		return p, err
	}
	if p.Symbol, err = argString(method, args, 7); err != nil {
		return p, err
	}
	if p.PaymentToken, err = argAddr(method, args, 8); err != nil {
		return p, err
	}
	return p, nil
}

func initParams(method string, args []any) (ticket.InitParams, error) {
	if err := wantArgs(method, args, 8); err != nil {
		return ticket.InitParams{}, err
	}

	var p ticket.InitParams
	var err error
	if p.EventCreator, err = argAddr(method, args, 0); err != nil {
		return p, err
	}
	if p.TotalSupply, err = argU32(method, args, 1); err != nil {
		return p, err
	}
	if p.PrimaryPrice, err = argBig(method, args, 2); err != nil {
		return p, err
	}
	if p.CreatorFeeBps, err = argU32(method, args, 3); err != nil {
		return p, err
	}
	if p.EventMetadata, err = argString(method, args, 4); err != nil {
		return p, err
	}
	if p.Name, err = argString(method, args, 5); err != nil {
		return p, err
	}
	if p.Symbol, err = argString(method, args, 6); err != nil {
		return p, err
	}
	if p.PaymentToken, err = argAddr(method, args, 7); err != nil {
		return p, err
	}
	return p, nil
}

func (s *session) dispatchTicket(ctx context.Context, ref common.Address, method string, args []any) (any, error) {
	c := ticket.New(s.env(ctx, ref))

	switch method {
	case "init":
		p, err := initParams(method, args)
		if err != nil {
			return nil, err
		}
		return nil, c.Init(p)

	case "mint_ticket":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		buyer, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.MintTicket(buyer)

	case "transfer_ticket":
		if err := wantArgs(method, args, 3); err != nil {
			return nil, err
		}
		from, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		to, err := argAddr(method, args, 1)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 2)
		if err != nil {
			return nil, err
		}
		return nil, c.TransferTicket(from, to, id)

	case "list_ticket":
		if err := wantArgs(method, args, 3); err != nil {
			return nil, err
		}
		seller, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 1)
		if err != nil {
			return nil, err
		}
		price, err := argBig(method, args, 2)
		if err != nil {
			return nil, err
		}
		return nil, c.ListTicket(seller, id, price)

	case "update_listing_price":
		if err := wantArgs(method, args, 3); err != nil {
			return nil, err
		}
		seller, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 1)
		if err != nil {
			return nil, err
		}
		price, err := argBig(method, args, 2)
		if err != nil {
			return nil, err
		}
		return nil, c.UpdateListingPrice(seller, id, price)

	case "delist_ticket":
		if err := wantArgs(method, args, 2); err != nil {
			return nil, err
		}
		seller, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 1)
		if err != nil {
			return nil, err
		}
		return nil, c.DelistTicket(seller, id)

	case "buy_secondary_ticket":
		if err := wantArgs(method, args, 2); err != nil {
			return nil, err
		}
		buyer, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 1)
		if err != nil {
			return nil, err
		}
		return nil, c.BuySecondaryTicket(buyer, id)

	case "mark_ticket_used":
		if err := wantArgs(method, args, 2); err != nil {
			return nil, err
		}
		creator, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 1)
		if err != nil {
			return nil, err
		}
		return nil, c.MarkTicketUsed(creator, id)

	case "get_ticket":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.GetTicket(id)

	case "get_event_info":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetEventInfo()

	case "get_user_tickets":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		user, err := argAddr(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.GetUserTickets(user)

	case "get_tickets_minted":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetTicketsMinted()

	case "get_tickets_available":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetTicketsAvailable()

	case "get_secondary_listing":
		if err := wantArgs(method, args, 1); err != nil {
			return nil, err
		}
		id, err := argU32(method, args, 0)
		if err != nil {
			return nil, err
		}
		return c.GetSecondaryListing(id)

	case "get_all_secondary_listings":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.GetAllSecondaryListings()

	case "name":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.Name()

	case "symbol":
		if err := wantArgs(method, args, 0); err != nil {
			return nil, err
		}
		return c.Symbol()
	}

	return nil, fmt.Errorf("%w: ticket ledger has no method %q", ErrUnknownMethod, method)
}
