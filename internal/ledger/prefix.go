package ledger

import "context"

// PrefixStore scopes a slice of a shared store to one namespace by
// prepending a fixed prefix to every key. Contract instances never see
// each other's entries; isolation is structural.
type PrefixStore struct {
	base   Store
	prefix []byte
}

// NewPrefixStore wraps base so all keys live under prefix.
func NewPrefixStore(base Store, prefix []byte) *PrefixStore {
	return &PrefixStore{base: base, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixStore) scoped(key []byte) []byte {
	scoped := make([]byte, 0, len(p.prefix)+len(key))
	scoped = append(scoped, p.prefix...)
	return append(scoped, key...)
}

func (p *PrefixStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return p.base.Get(ctx, p.scoped(key))
}

func (p *PrefixStore) Set(ctx context.Context, key, value []byte) error {
	return p.base.Set(ctx, p.scoped(key), value)
}

func (p *PrefixStore) Delete(ctx context.Context, key []byte) error {
	return p.base.Delete(ctx, p.scoped(key))
}
