package ledger

import (
	"context"
	"fmt"
	"sort"
)

// Overlay buffers writes and deletes on top of a base store. Reads see
// the buffered state. Commit applies the buffer to the base; dropping
// the overlay without committing discards it. The runtime runs every
// invocation inside one overlay, which is what makes a failed
// invocation leave no partial state behind.
type Overlay struct {
	base    Store
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay creates an empty overlay over base.
func NewOverlay(base Store) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	k := string(key)
	if value, ok := o.writes[k]; ok {
		return append([]byte(nil), value...), true, nil
	}
	if _, ok := o.deletes[k]; ok {
		return nil, false, nil
	}
	return o.base.Get(ctx, key)
}

func (o *Overlay) Set(ctx context.Context, key, value []byte) error {
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Delete(ctx context.Context, key []byte) error {
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

// Commit applies buffered writes and deletes to the base store in
// sorted key order, then resets the buffer. A partially failed commit
// returns the first error; callers treat that as a host failure, not a
// contract error.
func (o *Overlay) Commit(ctx context.Context) error {
	keys := make([]string, 0, len(o.writes)+len(o.deletes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	for k := range o.deletes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if value, ok := o.writes[k]; ok {
			if err := o.base.Set(ctx, []byte(k), value); err != nil {
				return fmt.Errorf("commit write: %w", err)
			}
			continue
		}
		if err := o.base.Delete(ctx, []byte(k)); err != nil {
			return fmt.Errorf("commit delete: %w", err)
		}
	}

	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	return nil
}
