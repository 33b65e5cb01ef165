// Package ticket implements the per-event ticket ledger contract: one
// event's configuration, primary sale, ownership table, secondary
// market, and check-in.
package ticket

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/ledger"
)

// maxFeeBps is the upper bound for creator_fee_bps (100%).
const maxFeeBps = 10000

// EventInfo is the event configuration, set once by Init.
type EventInfo struct {
	EventCreator  common.Address `cbor:"event_creator" json:"event_creator"`
	TotalSupply   uint32         `cbor:"total_supply" json:"total_supply"`
	PrimaryPrice  *big.Int       `cbor:"primary_price" json:"primary_price"`
	CreatorFeeBps uint32         `cbor:"creator_fee_bps" json:"creator_fee_bps"`
	EventMetadata string         `cbor:"event_metadata" json:"event_metadata"`
	Name          string         `cbor:"name" json:"name"`
	Symbol        string         `cbor:"symbol" json:"symbol"`
	PaymentToken  common.Address `cbor:"payment_token" json:"payment_token"`
}

// TicketData is one ticket's state. IsUsed only ever goes false→true.
type TicketData struct {
	TicketID uint32         `cbor:"ticket_id" json:"ticket_id"`
	Owner    common.Address `cbor:"owner" json:"owner"`
	IsUsed   bool           `cbor:"is_used" json:"is_used"`
}

// SecondaryListing is an active resale offer. At most one exists per
// ticket, and its seller always matches the ticket's current owner.
type SecondaryListing struct {
	TicketID uint32         `cbor:"ticket_id" json:"ticket_id"`
	Seller   common.Address `cbor:"seller" json:"seller"`
	Price    *big.Int       `cbor:"price" json:"price"`
}

// Contract is one event's ticket ledger bound to its instance store.
type Contract struct {
	env *ledger.Env
}

// New binds the contract to an execution environment.
func New(env *ledger.Env) *Contract {
	return &Contract{env: env}
}

func keyEventInfo() []byte             { return ledger.Key("EventInfo") }
func keyTicketsMinted() []byte         { return ledger.Key("TicketsMinted") }
func keyTicket(id uint32) []byte       { return ledger.Key("Ticket", id) }
func keyListing(id uint32) []byte      { return ledger.Key("SecondaryListing", id) }
func keyUserTickets(u common.Address) []byte { return ledger.Key("UserTickets", u) }

// InitParams carries the event configuration for Init.
type InitParams struct {
	EventCreator  common.Address
	TotalSupply   uint32
	PrimaryPrice  *big.Int
	CreatorFeeBps uint32
	EventMetadata string
	Name          string
	Symbol        string
	PaymentToken  common.Address
}

// Init performs one-time event setup.
func (c *Contract) Init(p InitParams) error {
	ctx := c.env.Context()

	ok, err := ledger.Has(ctx, c.env.Store, keyEventInfo())
	if err != nil {
		return err
	}
	if ok {
		return ledger.ErrAlreadyInitialized
	}

	if p.TotalSupply == 0 {
		return ledger.ErrInvalidSupply
	}
	if p.CreatorFeeBps > maxFeeBps {
		return ledger.ErrInvalidFee
	}
	if p.PrimaryPrice == nil || p.PrimaryPrice.Sign() < 0 {
		return fmt.Errorf("%w: primary price must be non-negative", ledger.ErrInvalidPrice)
	}

	info := EventInfo{
		EventCreator:  p.EventCreator,
		TotalSupply:   p.TotalSupply,
		PrimaryPrice:  p.PrimaryPrice,
		CreatorFeeBps: p.CreatorFeeBps,
		EventMetadata: p.EventMetadata,
		Name:          p.Name,
		Symbol:        p.Symbol,
		PaymentToken:  p.PaymentToken,
	}
	if err := ledger.Put(ctx, c.env.Store, keyEventInfo(), info); err != nil {
		return err
	}
	return ledger.Put(ctx, c.env.Store, keyTicketsMinted(), uint32(0))
}

// MintTicket sells the next ticket from the primary market to buyer
// and returns the new ticket ID. IDs are dense, starting at 0.
func (c *Contract) MintTicket(buyer common.Address) (uint32, error) {
	ctx := c.env.Context()

	if err := c.env.Auth.RequireAuth(buyer); err != nil {
		return 0, err
	}

	info, err := c.eventInfo()
	if err != nil {
		return 0, err
	}
	minted, err := c.ticketsMinted()
	if err != nil {
		return 0, err
	}
	if minted >= info.TotalSupply {
		return 0, ledger.ErrSupplyExhausted
	}

	if err := c.pay(buyer, info.EventCreator, info.PrimaryPrice, info.PaymentToken); err != nil {
		return 0, err
	}

	ticketID := minted
	data := TicketData{TicketID: ticketID, Owner: buyer, IsUsed: false}
	if err := ledger.Put(ctx, c.env.Store, keyTicket(ticketID), data); err != nil {
		return 0, err
	}
	if err := ledger.Put(ctx, c.env.Store, keyTicketsMinted(), minted+1); err != nil {
		return 0, err
	}
	if err := c.addUserTicket(buyer, ticketID); err != nil {
		return 0, err
	}

	return ticketID, nil
}

// TransferTicket moves a ticket directly between identities. Any
// active listing is removed so a stale offer can never be bought from
// a seller who no longer owns the ticket.
func (c *Contract) TransferTicket(from, to common.Address, ticketID uint32) error {
	ctx := c.env.Context()

	if err := c.env.Auth.RequireAuth(from); err != nil {
		return err
	}

	data, err := c.ticket(ticketID)
	if err != nil {
		return err
	}
	if data.Owner != from {
		return fmt.Errorf("%w: ticket %d belongs to %s", ledger.ErrNotOwner, ticketID, data.Owner.Hex())
	}

	if err := c.env.Store.Delete(ctx, keyListing(ticketID)); err != nil {
		return err
	}
	return c.reassign(data, to)
}

// MarkTicketUsed checks the ticket in. Only the event creator may do
// this, and it cannot be undone.
func (c *Contract) MarkTicketUsed(creator common.Address, ticketID uint32) error {
	ctx := c.env.Context()

	if err := c.env.Auth.RequireAuth(creator); err != nil {
		return err
	}

	info, err := c.eventInfo()
	if err != nil {
		return err
	}
	if creator != info.EventCreator {
		return fmt.Errorf("%w: only the event creator can mark tickets used", ledger.ErrUnauthorized)
	}

	data, err := c.ticket(ticketID)
	if err != nil {
		return err
	}
	if data.IsUsed {
		return ledger.ErrAlreadyUsed
	}

	data.IsUsed = true
	return ledger.Put(ctx, c.env.Store, keyTicket(ticketID), data)
}

func (c *Contract) eventInfo() (EventInfo, error) {
	var info EventInfo
	ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyEventInfo(), &info)
	if err != nil {
		return EventInfo{}, err
	}
	if !ok {
		return EventInfo{}, ledger.ErrNotInitialized
	}
	return info, nil
}

func (c *Contract) ticketsMinted() (uint32, error) {
	var minted uint32
	if _, err := ledger.GetInto(c.env.Context(), c.env.Store, keyTicketsMinted(), &minted); err != nil {
		return 0, err
	}
	return minted, nil
}

func (c *Contract) ticket(ticketID uint32) (TicketData, error) {
	var data TicketData
	ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyTicket(ticketID), &data)
	if err != nil {
		return TicketData{}, err
	}
	if !ok {
		return TicketData{}, fmt.Errorf("%w: ticket %d", ledger.ErrTicketNotFound, ticketID)
	}
	return data, nil
}

// pay moves amount of the payment token, skipping zero amounts.
func (c *Contract) pay(from, to common.Address, amount *big.Int, tokenRef common.Address) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	tok, err := c.env.Tokens.Token(tokenRef)
	if err != nil {
		return err
	}
	return tok.Transfer(c.env.Context(), from, to, amount)
}

// reassign moves ownership to a new identity and keeps the per-user
// index in step.
func (c *Contract) reassign(data TicketData, to common.Address) error {
	ctx := c.env.Context()

	if err := c.removeUserTicket(data.Owner, data.TicketID); err != nil {
		return err
	}
	data.Owner = to
	if err := ledger.Put(ctx, c.env.Store, keyTicket(data.TicketID), data); err != nil {
		return err
	}
	return c.addUserTicket(to, data.TicketID)
}

func (c *Contract) userTickets(user common.Address) ([]uint32, error) {
	var ids []uint32
	if _, err := ledger.GetInto(c.env.Context(), c.env.Store, keyUserTickets(user), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Contract) addUserTicket(user common.Address, ticketID uint32) error {
	ids, err := c.userTickets(user)
	if err != nil {
		return err
	}
	ids = append(ids, ticketID)
	return ledger.Put(c.env.Context(), c.env.Store, keyUserTickets(user), ids)
}

func (c *Contract) removeUserTicket(user common.Address, ticketID uint32) error {
	ids, err := c.userTickets(user)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != ticketID {
			kept = append(kept, id)
		}
	}
	return ledger.Put(c.env.Context(), c.env.Store, keyUserTickets(user), kept)
}
