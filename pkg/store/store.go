// Copyright 2025 Certen Protocol
//
// Package store is the host storage layer spec.md treats as an external
// collaborator: a KV-backed persistence of world and trixel records keyed
// by derived addresses, providing the "serialized transactional access"
// §5 requires of the host.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/certen/independant-validator/pkg/trixel"
	"github.com/certen/independant-validator/pkg/world"
)

// KV defines the key-value store interface Store is built on, matching the
// donor's thin storage-backend abstraction (pkg/kvdb.KVAdapter implements
// this against cometbft-db).
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// Store provides high-level access to world and trixel records in the KV
// store.
//
// CONCURRENCY: every update_trixel / create_trixel_and_ancestors call must
// hold the store's write lock for its entire duration, per §5's
// "serialized transactional" model: the lock is the single point of
// serialization across the world record, the target leaf, and the whole
// ancestor chain. Callers bracket a full pipeline operation with
// Lock/Unlock; Store itself never acquires or releases the lock internally
// so that a multi-record read-modify-write sequence stays atomic.
type Store struct {
	kv KV
	mu sync.Mutex
}

// NewStore creates a new Store over the given KV backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Lock acquires exclusive access for the duration of one pipeline
// operation.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (s *Store) Unlock() { s.mu.Unlock() }

var (
	keyWorldPrefix  = []byte("world:")
	keyTrixelPrefix = []byte("trixel:")
)

func worldKey(worldAddr [32]byte) []byte {
	return append(append([]byte{}, keyWorldPrefix...), worldAddr[:]...)
}

func trixelKey(worldAddr [32]byte, id uint64) []byte {
	addr := DeriveAddress(worldAddr, id)
	return append(append([]byte{}, keyTrixelPrefix...), addr[:]...)
}

// SaveWorld persists a world record under its address.
func (s *Store) SaveWorld(addr [32]byte, w *world.Record) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal world record: %w", err)
	}
	return s.kv.Set(worldKey(addr), b)
}

// LoadWorld loads a world record by address. Returns ErrWorldNotFound if
// absent.
func (s *Store) LoadWorld(addr [32]byte) (*world.Record, error) {
	b, err := s.kv.Get(worldKey(addr))
	if err != nil {
		return nil, fmt.Errorf("load world record: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrWorldNotFound
	}
	var w world.Record
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("unmarshal world record: %w", err)
	}
	return &w, nil
}

// SaveTrixel persists a trixel record under derive_address(worldAddr, t.ID).
func (s *Store) SaveTrixel(worldAddr [32]byte, t *trixel.Record) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trixel record: %w", err)
	}
	return s.kv.Set(trixelKey(worldAddr, t.ID), b)
}

// LoadTrixel loads a trixel record by (worldAddr, id). Returns
// ErrTrixelNotFound if absent.
func (s *Store) LoadTrixel(worldAddr [32]byte, id uint64) (*trixel.Record, error) {
	b, err := s.kv.Get(trixelKey(worldAddr, id))
	if err != nil {
		return nil, fmt.Errorf("load trixel record: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrTrixelNotFound
	}
	var t trixel.Record
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("unmarshal trixel record: %w", err)
	}
	return &t, nil
}

// HasTrixel reports whether a trixel record already exists, without the
// cost of fully decoding it.
func (s *Store) HasTrixel(worldAddr [32]byte, id uint64) (bool, error) {
	b, err := s.kv.Get(trixelKey(worldAddr, id))
	if err != nil {
		return false, fmt.Errorf("probe trixel record: %w", err)
	}
	return len(b) > 0, nil
}
