package ledger

import "errors"

// Contract errors. Every failed invocation surfaces exactly one of
// these (possibly wrapped with context); compare with errors.Is.
var (
	// Setup.
	ErrNotInitialized     = errors.New("contract not initialized")
	ErrAlreadyInitialized = errors.New("contract already initialized")

	// Validation.
	ErrInvalidSupply = errors.New("total supply must be greater than zero")
	ErrInvalidFee    = errors.New("fee basis points cannot exceed 10000")
	ErrInvalidPrice  = errors.New("price must be positive")

	// Lookup.
	ErrEventNotFound   = errors.New("event not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrListingNotFound = errors.New("listing not found")

	// Authorization.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotOwner     = errors.New("not ticket owner")

	// State.
	ErrSupplyExhausted = errors.New("all tickets sold out")
	ErrAlreadyUsed     = errors.New("ticket already used")
	ErrAlreadyListed   = errors.New("ticket already listed")

	// Payment, propagated verbatim from the token collaborator.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
