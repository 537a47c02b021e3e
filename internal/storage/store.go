// Package storage is the durable commit boundary for engine state. A
// summon transaction is complete only once SaveState has returned; saves
// are keyed by transaction id so a retried commit is applied exactly once.
package storage

import (
	"context"
	"sync"
)

// Store persists opaque per-player engine snapshots.
type Store interface {
	// SaveState durably replaces the player's snapshot. txID identifies
	// the transaction producing it; if the id was already applied the
	// call is a no-op and returns nil.
	SaveState(ctx context.Context, playerID, txID string, state []byte) error
	// LoadState returns the latest snapshot, or ok=false when the player
	// has none yet.
	LoadState(ctx context.Context, playerID string) (state []byte, ok bool, err error)
	Close() error
}

// MemoryStore keeps snapshots in process memory. Used in tests and as the
// default when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	states  map[string][]byte
	applied map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:  make(map[string][]byte),
		applied: make(map[string]struct{}),
	}
}

func (m *MemoryStore) SaveState(_ context.Context, playerID, txID string, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := playerID + "/" + txID
	if _, done := m.applied[key]; done {
		return nil
	}
	m.states[playerID] = append([]byte(nil), state...)
	m.applied[key] = struct{}{}
	return nil
}

func (m *MemoryStore) LoadState(_ context.Context, playerID string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.states[playerID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemoryStore) Close() error { return nil }
