package ticket

import (
	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/ledger"
)

// GetTicket returns one ticket's state.
func (c *Contract) GetTicket(ticketID uint32) (TicketData, error) {
	return c.ticket(ticketID)
}

// GetEventInfo returns the event configuration.
func (c *Contract) GetEventInfo() (EventInfo, error) {
	return c.eventInfo()
}

// GetUserTickets returns the IDs of all tickets user currently owns.
func (c *Contract) GetUserTickets(user common.Address) ([]uint32, error) {
	return c.userTickets(user)
}

// GetTicketsMinted returns how many tickets have been sold so far.
func (c *Contract) GetTicketsMinted() (uint32, error) {
	return c.ticketsMinted()
}

// GetTicketsAvailable returns how many tickets remain in the primary
// market.
func (c *Contract) GetTicketsAvailable() (uint32, error) {
	info, err := c.eventInfo()
	if err != nil {
		return 0, err
	}
	minted, err := c.ticketsMinted()
	if err != nil {
		return 0, err
	}
	return info.TotalSupply - minted, nil
}

// GetSecondaryListing returns the active listing for a ticket, or nil
// when none exists.
func (c *Contract) GetSecondaryListing(ticketID uint32) (*SecondaryListing, error) {
	listing := new(SecondaryListing)
	ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyListing(ticketID), listing)
	if err != nil || !ok {
		return nil, err
	}
	return listing, nil
}

// GetAllSecondaryListings returns every active listing, in ticket-ID
// order.
func (c *Contract) GetAllSecondaryListings() ([]SecondaryListing, error) {
	minted, err := c.ticketsMinted()
	if err != nil {
		return nil, err
	}

	var listings []SecondaryListing
	for id := uint32(0); id < minted; id++ {
		var listing SecondaryListing
		ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyListing(id), &listing)
		if err != nil {
			return nil, err
		}
		if ok {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

// Name returns the event name.
func (c *Contract) Name() (string, error) {
	info, err := c.eventInfo()
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// Symbol returns the ticket symbol.
func (c *Contract) Symbol() (string, error) {
	info, err := c.eventInfo()
	if err != nil {
		return "", err
	}
	return info.Symbol, nil
}
