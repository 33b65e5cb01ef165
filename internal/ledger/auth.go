package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AuthContext carries the set of identities that cryptographically
// authorized the current invocation. Signature verification happens
// outside this core; by the time a contract runs, membership here is
// the whole authorization question.
type AuthContext struct {
	approved map[common.Address]struct{}
}

// NewAuthContext builds an AuthContext for the given identities.
func NewAuthContext(ids ...common.Address) AuthContext {
	approved := make(map[common.Address]struct{}, len(ids))
	for _, id := range ids {
		approved[id] = struct{}{}
	}
	return AuthContext{approved: approved}
}

// Authorized reports whether id authorized this invocation.
func (a AuthContext) Authorized(id common.Address) bool {
	_, ok := a.approved[id]
	return ok
}

// RequireAuth returns ErrUnauthorized unless id authorized this
// invocation.
func (a AuthContext) RequireAuth(id common.Address) error {
	if !a.Authorized(id) {
		return fmt.Errorf("%w: %s did not authorize this invocation", ErrUnauthorized, id.Hex())
	}
	return nil
}
