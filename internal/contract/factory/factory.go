// Package factory implements the registry contract that deploys and
// indexes per-event ticket ledgers.
package factory

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/ledger"
)

const maxFeeBps = 10000

// EventRecord is the registry entry for one deployed event. Immutable
// after creation.
type EventRecord struct {
	EventContract common.Address `cbor:"event_contract" json:"event_contract"`
	EventCreator  common.Address `cbor:"event_creator" json:"event_creator"`
	Name          string         `cbor:"name" json:"name"`
	Symbol        string         `cbor:"symbol" json:"symbol"`
	CreatedAt     uint64         `cbor:"created_at" json:"created_at"`
}

// Contract is the factory bound to its instance store and the host's
// deploy/invoke boundary.
type Contract struct {
	env  *ledger.Env
	host ledger.Host
}

// New binds the factory to an environment and host.
func New(env *ledger.Env, host ledger.Host) *Contract {
	return &Contract{env: env, host: host}
}

func keyWasmHash() []byte                        { return ledger.Key("WasmHash") }
func keyEventCounter() []byte                    { return ledger.Key("EventCounter") }
func keyEventRecord(id uint32) []byte            { return ledger.Key("EventRecord", id) }
func keyAllEvents() []byte                       { return ledger.Key("AllEvents") }
func keyCreatorEvents(c common.Address) []byte   { return ledger.Key("CreatorEvents", c) }

// Initialize stores the code hash used to deploy ticket ledgers. Runs
// exactly once, before any CreateEvent.
func (c *Contract) Initialize(wasmHash common.Hash) error {
	ctx := c.env.Context()

	ok, err := ledger.Has(ctx, c.env.Store, keyWasmHash())
	if err != nil {
		return err
	}
	if ok {
		return ledger.ErrAlreadyInitialized
	}

	if err := ledger.Put(ctx, c.env.Store, keyWasmHash(), wasmHash); err != nil {
		return err
	}
	if err := ledger.Put(ctx, c.env.Store, keyEventCounter(), uint32(0)); err != nil {
		return err
	}
	return ledger.Put(ctx, c.env.Store, keyAllEvents(), []uint32{})
}

// CreateEventParams carries everything needed to deploy and seed a new
// event.
type CreateEventParams struct {
	Salt          common.Hash
	EventCreator  common.Address
	TotalSupply   uint32
	PrimaryPrice  *big.Int
	CreatorFeeBps uint32
	EventMetadata string
	Name          string
	Symbol        string
	PaymentToken  common.Address
}

// CreateEvent deploys a new ticket ledger at an address derived from
// the salt, seeds it via its init method, and registers it under the
// next event ID. Returns the new instance's address.
func (c *Contract) CreateEvent(p CreateEventParams) (common.Address, error) {
	ctx := c.env.Context()

	if err := c.env.Auth.RequireAuth(p.EventCreator); err != nil {
		return common.Address{}, err
	}

	if p.TotalSupply == 0 {
		return common.Address{}, ledger.ErrInvalidSupply
	}
	if p.CreatorFeeBps > maxFeeBps {
		return common.Address{}, ledger.ErrInvalidFee
	}
	if p.PrimaryPrice == nil || p.PrimaryPrice.Sign() < 0 {
		return common.Address{}, fmt.Errorf("%w: primary price must be non-negative", ledger.ErrInvalidPrice)
	}

	wasmHash, err := c.wasmHash()
	if err != nil {
		return common.Address{}, err
	}

	deployed, err := c.host.Deploy(ctx, wasmHash, p.Salt)
	if err != nil {
		return common.Address{}, err
	}

	initArgs := []any{
		p.EventCreator,
		p.TotalSupply,
		p.PrimaryPrice,
		p.CreatorFeeBps,
		p.EventMetadata,
		p.Name,
		p.Symbol,
		p.PaymentToken,
	}
	if _, err := c.host.Invoke(ctx, deployed, "init", initArgs); err != nil {
		return common.Address{}, fmt.Errorf("seed event contract: %w", err)
	}

	var counter uint32
	if _, err := ledger.GetInto(ctx, c.env.Store, keyEventCounter(), &counter); err != nil {
		return common.Address{}, err
	}
	eventID := counter

	record := EventRecord{
		EventContract: deployed,
		EventCreator:  p.EventCreator,
		Name:          p.Name,
		Symbol:        p.Symbol,
		CreatedAt:     c.env.Timestamp(),
	}
	if err := ledger.Put(ctx, c.env.Store, keyEventRecord(eventID), record); err != nil {
		return common.Address{}, err
	}
	if err := ledger.Put(ctx, c.env.Store, keyEventCounter(), eventID+1); err != nil {
		return common.Address{}, err
	}

	if err := c.appendIndex(keyAllEvents(), eventID); err != nil {
		return common.Address{}, err
	}
	if err := c.appendIndex(keyCreatorEvents(p.EventCreator), eventID); err != nil {
		return common.Address{}, err
	}

	return deployed, nil
}

// GetEvent returns the registry entry for an event ID.
func (c *Contract) GetEvent(eventID uint32) (EventRecord, error) {
	var record EventRecord
	ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyEventRecord(eventID), &record)
	if err != nil {
		return EventRecord{}, err
	}
	if !ok {
		return EventRecord{}, fmt.Errorf("%w: event %d", ledger.ErrEventNotFound, eventID)
	}
	return record, nil
}

// GetAllEvents returns every registered event, in creation order.
func (c *Contract) GetAllEvents() ([]EventRecord, error) {
	return c.records(keyAllEvents())
}

// GetCreatorEvents returns every event deployed by creator.
func (c *Contract) GetCreatorEvents(creator common.Address) ([]EventRecord, error) {
	return c.records(keyCreatorEvents(creator))
}

// GetEventCount returns how many events have been created.
func (c *Contract) GetEventCount() (uint32, error) {
	var counter uint32
	if _, err := ledger.GetInto(c.env.Context(), c.env.Store, keyEventCounter(), &counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// GetWasmHash returns the code hash used for deployments.
func (c *Contract) GetWasmHash() (common.Hash, error) {
	return c.wasmHash()
}

func (c *Contract) wasmHash() (common.Hash, error) {
	var hash common.Hash
	ok, err := ledger.GetInto(c.env.Context(), c.env.Store, keyWasmHash(), &hash)
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, ledger.ErrNotInitialized
	}
	return hash, nil
}

func (c *Contract) appendIndex(key []byte, eventID uint32) error {
	ctx := c.env.Context()
	var ids []uint32
	if _, err := ledger.GetInto(ctx, c.env.Store, key, &ids); err != nil {
		return err
	}
	ids = append(ids, eventID)
	return ledger.Put(ctx, c.env.Store, key, ids)
}

func (c *Contract) records(key []byte) ([]EventRecord, error) {
	ctx := c.env.Context()
	var ids []uint32
	if _, err := ledger.GetInto(ctx, c.env.Store, key, &ids); err != nil {
		return nil, err
	}

	records := make([]EventRecord, 0, len(ids))
	for _, id := range ids {
		record, err := c.GetEvent(id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
