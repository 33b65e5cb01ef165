package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the payment-token collaborator contracts settle through.
// Amounts are integers in the token's smallest unit.
type Token interface {
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// TokenResolver maps a payment-token reference to its Token.
type TokenResolver interface {
	Token(ref common.Address) (Token, error)
}

// Deployer instantiates a new contract from a code hash at an address
// derived deterministically from the salt.
type Deployer interface {
	Deploy(ctx context.Context, codeHash common.Hash, salt common.Hash) (common.Address, error)
}

// Invoker dispatches a method call to a deployed contract instance.
// A cross-contract call runs inside the caller's atomic step.
type Invoker interface {
	Invoke(ctx context.Context, ref common.Address, method string, args []any) (any, error)
}

// Host combines the cross-contract facilities the runtime provides to
// contracts that deploy and call other contracts.
type Host interface {
	Deployer
	Invoker
}

// Env is the execution environment handed to a contract for one
// invocation: its instance-scoped store, the identities that
// authorized the call, the ledger clock, and the token resolver.
type Env struct {
	Store  Store
	Auth   AuthContext
	Tokens TokenResolver
	Ctx    context.Context

	// Now returns the ledger timestamp in unix seconds.
	Now func() uint64
}

// Context returns the invocation context, never nil.
func (e *Env) Context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

// Timestamp returns the current ledger timestamp.
func (e *Env) Timestamp() uint64 {
	if e.Now == nil {
		return 0
	}
	return e.Now()
}

// WithAuth returns a copy of the environment carrying a different
// authorization context. Storage and clock are shared.
func (e *Env) WithAuth(auth AuthContext) *Env {
	clone := *e
	clone.Auth = auth
	return &clone
}
