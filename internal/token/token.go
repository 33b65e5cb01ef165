package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sticket/internal/ledger"
)

// Ledger is a minimal fungible-token balance ledger backed by host
// storage. One Ledger serves one token reference; balances for
// different references never share keys.
type Ledger struct {
	store ledger.Store
	ref   common.Address
}

// New returns the balance ledger for the token at ref.
func New(store ledger.Store, ref common.Address) *Ledger {
	return &Ledger{store: store, ref: ref}
}

func (l *Ledger) balanceKey(owner common.Address) []byte {
	return ledger.Key("TokenBalance", l.ref, owner)
}

// BalanceOf returns owner's balance, zero when the account is unknown.
func (l *Ledger) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	balance := new(big.Int)
	if _, err := ledger.GetInto(ctx, l.store, l.balanceKey(owner), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// Transfer moves amount from one account to another. A zero amount is
// a no-op; a short balance fails with ErrInsufficientFunds and no
// balance changes.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("transfer amount must be non-negative")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}

	fromBalance, err := l.BalanceOf(ctx, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s",
			ledger.ErrInsufficientFunds, from.Hex(), fromBalance, amount)
	}

	toBalance, err := l.BalanceOf(ctx, to)
	if err != nil {
		return err
	}

	fromBalance.Sub(fromBalance, amount)
	toBalance.Add(toBalance, amount)

	if err := ledger.Put(ctx, l.store, l.balanceKey(from), fromBalance); err != nil {
		return err
	}
	return ledger.Put(ctx, l.store, l.balanceKey(to), toBalance)
}

// Mint credits amount to an account. Only the dev node and tests fund
// accounts this way; contracts never mint.
func (l *Ledger) Mint(ctx context.Context, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("mint amount must be non-negative")
	}
	balance, err := l.BalanceOf(ctx, to)
	if err != nil {
		return err
	}
	balance.Add(balance, amount)
	return ledger.Put(ctx, l.store, l.balanceKey(to), balance)
}

// Bank resolves any token reference to its balance ledger over a
// shared store. It implements ledger.TokenResolver.
type Bank struct {
	store ledger.Store
}

// NewBank returns a Bank over store.
func NewBank(store ledger.Store) *Bank {
	return &Bank{store: store}
}

// Token returns the ledger for ref.
func (b *Bank) Token(ref common.Address) (ledger.Token, error) {
	return New(b.store, ref), nil
}
