package ticket

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/ledger"
	"sticket/internal/storage"
	"sticket/internal/token"
)

var (
	creator = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice   = common.HexToAddress("0x1000000000000000000000000000000000000002")
	bob     = common.HexToAddress("0x1000000000000000000000000000000000000003")
	carol   = common.HexToAddress("0x1000000000000000000000000000000000000004")
	payTok  = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

func newTestEnv(ids ...common.Address) *ledger.Env {
	store := storage.NewMemory()
	return &ledger.Env{
		Store:  store,
		Auth:   ledger.NewAuthContext(ids...),
		Tokens: token.NewBank(store),
	}
}

func testParams(supply uint32, price int64, feeBps uint32) InitParams {
	return InitParams{
		EventCreator:  creator,
		TotalSupply:   supply,
		PrimaryPrice:  big.NewInt(price),
		CreatorFeeBps: feeBps,
		EventMetadata: "ipfs://summer-fest",
		Name:          "Summer Fest",
		Symbol:        "FEST",
		PaymentToken:  payTok,
	}
}

func initContract(t *testing.T, env *ledger.Env, supply uint32, price int64, feeBps uint32) *Contract {
	t.Helper()
	c := New(env)
	if err := c.Init(testParams(supply, price, feeBps)); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return c
}

func fund(t *testing.T, env *ledger.Env, account common.Address, amount int64) {
	t.Helper()
	if err := token.New(env.Store, payTok).Mint(context.Background(), account, big.NewInt(amount)); err != nil {
		t.Fatalf("fund %s: %v", account.Hex(), err)
	}
}

func balanceOf(t *testing.T, env *ledger.Env, account common.Address) int64 {
	t.Helper()
	balance, err := token.New(env.Store, payTok).BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account.Hex(), err)
	}
	return balance.Int64()
}

func TestInitTwiceFails(t *testing.T) {
	env := newTestEnv()
	c := initContract(t, env, 10, 500, 100)

	if err := c.Init(testParams(10, 500, 100)); !errors.Is(err, ledger.ErrAlreadyInitialized) {
		t.Fatalf("want ErrAlreadyInitialized, got %v", err)
	}
}

func TestInitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*InitParams)
		want   error
	}{
		{"zero supply", func(p *InitParams) { p.TotalSupply = 0 }, ledger.ErrInvalidSupply},
		{"fee over 100%", func(p *InitParams) { p.CreatorFeeBps = 10001 }, ledger.ErrInvalidFee},
		{"negative price", func(p *InitParams) { p.PrimaryPrice = big.NewInt(-1) }, ledger.ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams(10, 500, 100)
			tc.mutate(&p)
			if err := New(newTestEnv()).Init(p); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestInitAllowsFreeEvents(t *testing.T) {
	env := newTestEnv(alice)
	c := initContract(t, env, 5, 0, 0)

	// A zero primary price means minting moves no funds at all.
	id, err := c.MintTicket(alice)
	if err != nil {
		t.Fatalf("mint on free event failed: %v", err)
	}
	if id != 0 {
		t.Fatalf("want ticket 0, got %d", id)
	}
	if got := balanceOf(t, env, creator); got != 0 {
		t.Fatalf("creator balance changed on free mint: %d", got)
	}
}

func TestMintAssignsDenseIDsAndPays(t *testing.T) {
	env := newTestEnv(alice)
	c := initContract(t, env, 3, 500, 100)
	fund(t, env, alice, 1500)

	for want := uint32(0); want < 3; want++ {
		id, err := c.MintTicket(alice)
		if err != nil {
			t.Fatalf("mint %d failed: %v", want, err)
		}
		if id != want {
			t.Fatalf("want ticket %d, got %d", want, id)
		}
	}

	data, err := c.GetTicket(0)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	if data.Owner != alice || data.IsUsed {
		t.Fatalf("unexpected ticket state: %+v", data)
	}

	if got := balanceOf(t, env, creator); got != 1500 {
		t.Fatalf("creator balance: want 1500, got %d", got)
	}
	if got := balanceOf(t, env, alice); got != 0 {
		t.Fatalf("alice balance: want 0, got %d", got)
	}

	ids, err := c.GetUserTickets(alice)
	if err != nil {
		t.Fatalf("user tickets: %v", err)
	}
	if want := []uint32{0, 1, 2}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("user tickets mismatch: %v != %v", ids, want)
	}
}

func TestMintSupplyExhausted(t *testing.T) {
	env := newTestEnv(alice)
	c := initContract(t, env, 2, 500, 100)
	fund(t, env, alice, 2000)

	for i := 0; i < 2; i++ {
		if _, err := c.MintTicket(alice); err != nil {
			t.Fatalf("mint %d failed: %v", i, err)
		}
	}

	if _, err := c.MintTicket(alice); !errors.Is(err, ledger.ErrSupplyExhausted) {
		t.Fatalf("want ErrSupplyExhausted, got %v", err)
	}

	minted, err := c.GetTicketsMinted()
	if err != nil {
		t.Fatalf("tickets minted: %v", err)
	}
	if minted != 2 {
		t.Fatalf("want 2 minted, got %d", minted)
	}
	available, err := c.GetTicketsAvailable()
	if err != nil {
		t.Fatalf("tickets available: %v", err)
	}
	if available != 0 {
		t.Fatalf("want 0 available, got %d", available)
	}
}

func TestMintRequiresBuyerAuth(t *testing.T) {
	env := newTestEnv(bob)
	c := initContract(t, env, 2, 500, 100)

	if _, err := c.MintTicket(alice); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestMintInsufficientFunds(t *testing.T) {
	env := newTestEnv(alice)
	c := initContract(t, env, 2, 500, 100)
	fund(t, env, alice, 499)

	if _, err := c.MintTicket(alice); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	minted, err := c.GetTicketsMinted()
	if err != nil {
		t.Fatalf("tickets minted: %v", err)
	}
	if minted != 0 {
		t.Fatalf("failed mint changed the counter: %d", minted)
	}
}

func TestTransferTicket(t *testing.T) {
	env := newTestEnv(alice, bob)
	c := initContract(t, env, 2, 500, 0)
	fund(t, env, alice, 500)

	if _, err := c.MintTicket(alice); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := c.TransferTicket(alice, bob, 0); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	data, err := c.GetTicket(0)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	if data.Owner != bob {
		t.Fatalf("want owner %s, got %s", bob.Hex(), data.Owner.Hex())
	}

	aliceIDs, err := c.GetUserTickets(alice)
	if err != nil {
		t.Fatalf("user tickets: %v", err)
	}
	if len(aliceIDs) != 0 {
		t.Fatalf("alice still indexed: %v", aliceIDs)
	}
	bobIDs, err := c.GetUserTickets(bob)
	if err != nil {
		t.Fatalf("user tickets: %v", err)
	}
	if want := []uint32{0}; !reflect.DeepEqual(bobIDs, want) {
		t.Fatalf("bob index mismatch: %v != %v", bobIDs, want)
	}
}

func TestTransferErrors(t *testing.T) {
	env := newTestEnv(alice, bob)
	c := initContract(t, env, 2, 0, 0)
	if _, err := c.MintTicket(alice); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := c.TransferTicket(alice, bob, 7); !errors.Is(err, ledger.ErrTicketNotFound) {
		t.Fatalf("want ErrTicketNotFound, got %v", err)
	}
	if err := c.TransferTicket(bob, carol, 0); !errors.Is(err, ledger.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner, got %v", err)
	}

	unauthorized := New(env.WithAuth(ledger.NewAuthContext(carol)))
	if err := unauthorized.TransferTicket(alice, bob, 0); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestMarkTicketUsed(t *testing.T) {
	env := newTestEnv(alice, creator)
	c := initContract(t, env, 2, 0, 0)
	if _, err := c.MintTicket(alice); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := c.MarkTicketUsed(creator, 0); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}
	data, err := c.GetTicket(0)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	if !data.IsUsed {
		t.Fatalf("ticket not marked used: %+v", data)
	}

	if err := c.MarkTicketUsed(creator, 0); !errors.Is(err, ledger.ErrAlreadyUsed) {
		t.Fatalf("want ErrAlreadyUsed, got %v", err)
	}
	if err := c.MarkTicketUsed(creator, 9); !errors.Is(err, ledger.ErrTicketNotFound) {
		t.Fatalf("want ErrTicketNotFound, got %v", err)
	}
}

func TestMarkTicketUsedCreatorOnly(t *testing.T) {
	env := newTestEnv(alice)
	c := initContract(t, env, 2, 0, 0)
	if _, err := c.MintTicket(alice); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// Alice authorized the call but is not the event creator.
	if err := c.MarkTicketUsed(alice, 0); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestUsedTicketStaysTransferable(t *testing.T) {
	env := newTestEnv(alice, bob, creator)
	c := initContract(t, env, 2, 0, 0)
	if _, err := c.MintTicket(alice); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := c.MarkTicketUsed(creator, 0); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	if err := c.TransferTicket(alice, bob, 0); err != nil {
		t.Fatalf("transfer of used ticket failed: %v", err)
	}
	if err := c.ListTicket(bob, 0, big.NewInt(100)); err != nil {
		t.Fatalf("listing a used ticket failed: %v", err)
	}
}

func TestNameAndSymbol(t *testing.T) {
	env := newTestEnv()
	c := initContract(t, env, 2, 0, 0)

	name, err := c.Name()
	if err != nil {
		t.Fatalf("name: %v", err)
	}
	if name != "Summer Fest" {
		t.Fatalf("name mismatch: %q", name)
	}
	symbol, err := c.Symbol()
	if err != nil {
		t.Fatalf("symbol: %v", err)
	}
	if symbol != "FEST" {
		t.Fatalf("symbol mismatch: %q", symbol)
	}
}

func TestReadsBeforeInit(t *testing.T) {
	c := New(newTestEnv())

	if _, err := c.GetEventInfo(); !errors.Is(err, ledger.ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}
	if _, err := c.MintTicket(alice); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("want auth failure before state reads, got %v", err)
	}
}
