package ledger

import (
	"context"
	"fmt"

	"sticket/internal/codec"
)

// Store is the persistent key-value surface a contract instance runs
// against. Values are deterministic CBOR produced by Put.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
}

// Key builds a tagged storage key from a tag and its arguments,
// encoded as a deterministic CBOR tuple. Keys built from the same
// inputs are always byte-identical.
func Key(tag string, args ...any) []byte {
	tuple := make([]any, 0, len(args)+1)
	tuple = append(tuple, tag)
	tuple = append(tuple, args...)

	key, err := codec.Marshal(tuple)
	if err != nil {
		// Key arguments are fixed contract types; encoding them
		// cannot fail at runtime unless a new key shape is wired
		// incorrectly.
		panic("ledger: encode storage key " + tag + ": " + err.Error())
	}
	return key
}

// Put encodes v and stores it under key.
func Put(ctx context.Context, s Store, key []byte, v any) error {
	data, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	return s.Set(ctx, key, data)
}

// GetInto loads the value under key into v. The second return is
// false when the key is absent.
func GetInto(ctx context.Context, s Store, key []byte, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode value: %w", err)
	}
	return true, nil
}

// Has reports whether key is present.
func Has(ctx context.Context, s Store, key []byte) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}
