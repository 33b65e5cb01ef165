package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sticket/internal/codec"
)

// FileStore keeps the whole state in memory and persists it as a
// CBOR snapshot. Save writes to a temp file and renames, so a crash
// mid-write never leaves a torn snapshot behind.
type FileStore struct {
	path string
	mem  *Memory
}

type entry struct {
	Key   []byte `cbor:"key"`
	Value []byte `cbor:"value"`
}

type snapshot struct {
	Entries []entry `cbor:"entries"`
	SavedAt string  `cbor:"saved_at"`
}

func sortEntries(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key, entries[j].Key) < 0
	})
}

// NewFileStore opens (or creates) the snapshot at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, mem: NewMemory()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state snapshot: %w", err)
	}

	var snap snapshot
	if err := codec.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse state snapshot: %w", err)
	}
	s.mem.restore(snap.Entries)
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return s.mem.Get(ctx, key)
}

func (s *FileStore) Set(ctx context.Context, key, value []byte) error {
	return s.mem.Set(ctx, key, value)
}

func (s *FileStore) Delete(ctx context.Context, key []byte) error {
	return s.mem.Delete(ctx, key)
}

// Save persists the current state atomically.
func (s *FileStore) Save() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	snap := snapshot{
		Entries: s.mem.snapshot(),
		SavedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal state snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename state snapshot: %w", err)
	}
	return nil
}
