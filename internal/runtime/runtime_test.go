package runtime

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/contract/factory"
	"sticket/internal/contract/ticket"
	"sticket/internal/ledger"
	"sticket/internal/storage"
)

var (
	creator = common.HexToAddress("0x1000000000000000000000000000000000000001")
	buyer   = common.HexToAddress("0x1000000000000000000000000000000000000002")
	payTok  = common.HexToAddress("0x2000000000000000000000000000000000000001")
	codeH   = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")
	saltA   = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001")
	saltB   = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000002")
)

func newTestRuntime() *Runtime {
	return New(storage.NewMemory(), nil, WithClock(func() uint64 { return 1700000000 }))
}

func auth(ids ...common.Address) ledger.AuthContext {
	return ledger.NewAuthContext(ids...)
}

func createEventArgs(salt common.Hash, supply uint32, price int64, feeBps uint32) []any {
	return []any{
		salt, creator, supply, big.NewInt(price), feeBps,
		"ipfs://summer-fest", "Summer Fest", "FEST", payTok,
	}
}

// setupEvent initializes the factory and creates one event, returning
// the ticket ledger's address.
func setupEvent(t *testing.T, rt *Runtime, supply uint32, price int64, feeBps uint32) common.Address {
	t.Helper()
	ctx := context.Background()

	if _, err := rt.Invoke(ctx, auth(), rt.FactoryAddress(), "initialize", []any{codeH}); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	result, err := rt.Invoke(ctx, auth(creator), rt.FactoryAddress(), "create_event",
		createEventArgs(saltA, supply, price, feeBps))
	if err != nil {
		t.Fatalf("create_event failed: %v", err)
	}
	addr, ok := result.(common.Address)
	if !ok {
		t.Fatalf("create_event returned %T", result)
	}
	return addr
}

func TestEndToEndPrimarySale(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	event := setupEvent(t, rt, 2, 500, 100)

	if err := rt.Fund(ctx, payTok, buyer, big.NewInt(1000)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}

	result, err := rt.Invoke(ctx, auth(buyer), event, "mint_ticket", []any{buyer})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if id := result.(uint32); id != 0 {
		t.Fatalf("want ticket 0, got %d", id)
	}

	if _, err := rt.Invoke(ctx, auth(buyer), event, "mint_ticket", []any{buyer}); err != nil {
		t.Fatalf("second mint failed: %v", err)
	}
	if _, err := rt.Invoke(ctx, auth(buyer), event, "mint_ticket", []any{buyer}); !errors.Is(err, ledger.ErrSupplyExhausted) {
		t.Fatalf("want ErrSupplyExhausted, got %v", err)
	}

	balance, err := rt.BalanceOf(ctx, payTok, creator)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance.Int64() != 1000 {
		t.Fatalf("creator proceeds: want 1000, got %s", balance)
	}

	result, err = rt.Invoke(ctx, auth(), event, "get_ticket", []any{uint32(0)})
	if err != nil {
		t.Fatalf("get_ticket failed: %v", err)
	}
	data := result.(ticket.TicketData)
	if data.Owner != buyer || data.IsUsed {
		t.Fatalf("unexpected ticket state: %+v", data)
	}
}

func TestFailedInvocationLeavesNoState(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	event := setupEvent(t, rt, 2, 500, 100)

	// Buyer has no funds: the payment happens before the counter
	// moves, and the overlay discards everything anyway.
	if _, err := rt.Invoke(ctx, auth(buyer), event, "mint_ticket", []any{buyer}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	result, err := rt.Invoke(ctx, auth(), event, "get_tickets_minted", nil)
	if err != nil {
		t.Fatalf("get_tickets_minted failed: %v", err)
	}
	if minted := result.(uint32); minted != 0 {
		t.Fatalf("failed mint left state behind: %d tickets minted", minted)
	}
}

func TestFailedCreateEventLeavesNoRegistryEntry(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()

	if _, err := rt.Invoke(ctx, auth(), rt.FactoryAddress(), "initialize", []any{codeH}); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// Invalid supply aborts the whole step.
	if _, err := rt.Invoke(ctx, auth(creator), rt.FactoryAddress(), "create_event",
		createEventArgs(saltA, 0, 500, 100)); !errors.Is(err, ledger.ErrInvalidSupply) {
		t.Fatalf("want ErrInvalidSupply, got %v", err)
	}

	result, err := rt.Invoke(ctx, auth(), rt.FactoryAddress(), "get_event_count", nil)
	if err != nil {
		t.Fatalf("get_event_count failed: %v", err)
	}
	if count := result.(uint32); count != 0 {
		t.Fatalf("failed create_event registered an event: %d", count)
	}
}

func TestDeterministicAddressing(t *testing.T) {
	deployer := common.HexToAddress("0x00000000000000000000000000000000000000ff")

	first := ContractAddress(deployer, saltA)
	if second := ContractAddress(deployer, saltA); second != first {
		t.Fatalf("same salt produced different addresses: %s != %s", first.Hex(), second.Hex())
	}
	if other := ContractAddress(deployer, saltB); other == first {
		t.Fatalf("different salts collided at %s", first.Hex())
	}
}

func TestSaltReuseFails(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	setupEvent(t, rt, 2, 500, 100)

	if _, err := rt.Invoke(ctx, auth(creator), rt.FactoryAddress(), "create_event",
		createEventArgs(saltA, 5, 100, 0)); !errors.Is(err, ledger.ErrAlreadyInitialized) {
		t.Fatalf("want ErrAlreadyInitialized on salt reuse, got %v", err)
	}

	if _, err := rt.Invoke(ctx, auth(creator), rt.FactoryAddress(), "create_event",
		createEventArgs(saltB, 5, 100, 0)); err != nil {
		t.Fatalf("fresh salt should deploy: %v", err)
	}
}

func TestSecondaryMarketThroughRuntime(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	event := setupEvent(t, rt, 2, 0, 250)

	if _, err := rt.Invoke(ctx, auth(creator), event, "mint_ticket", []any{creator}); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := rt.Invoke(ctx, auth(creator), event, "list_ticket", []any{creator, uint32(0), big.NewInt(1000)}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := rt.Fund(ctx, payTok, buyer, big.NewInt(1000)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if _, err := rt.Invoke(ctx, auth(buyer), event, "buy_secondary_ticket", []any{buyer, uint32(0)}); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// Creator was both seller and fee recipient here: 975 + 25.
	balance, err := rt.BalanceOf(ctx, payTok, creator)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance.Int64() != 1000 {
		t.Fatalf("creator balance: want 1000, got %s", balance)
	}

	result, err := rt.Invoke(ctx, auth(), event, "get_secondary_listing", []any{uint32(0)})
	if err != nil {
		t.Fatalf("get_secondary_listing failed: %v", err)
	}
	if listing := result.(*ticket.SecondaryListing); listing != nil {
		t.Fatalf("listing survived sale: %+v", listing)
	}
}

func TestRegistryVisibleThroughRuntime(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	event := setupEvent(t, rt, 2, 500, 100)

	result, err := rt.Invoke(ctx, auth(), rt.FactoryAddress(), "get_event", []any{uint32(0)})
	if err != nil {
		t.Fatalf("get_event failed: %v", err)
	}
	record := result.(factory.EventRecord)
	if record.EventContract != event || record.EventCreator != creator {
		t.Fatalf("record mismatch: %+v", record)
	}
	if record.CreatedAt != 1700000000 {
		t.Fatalf("created_at mismatch: %d", record.CreatedAt)
	}
}

func TestDispatchErrors(t *testing.T) {
	rt := newTestRuntime()
	ctx := context.Background()
	event := setupEvent(t, rt, 2, 500, 100)

	if _, err := rt.Invoke(ctx, auth(), event, "does_not_exist", nil); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("want ErrUnknownMethod, got %v", err)
	}
	if _, err := rt.Invoke(ctx, auth(), common.HexToAddress("0xdead"), "get_ticket", []any{uint32(0)}); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("want ErrUnknownInstance, got %v", err)
	}
	if _, err := rt.Invoke(ctx, auth(), event, "get_ticket", []any{"zero"}); err == nil {
		t.Fatalf("want argument type error")
	}
}
