// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

import (
	"context"
	"sync"
)

// Store is the durable key/value storage behind the session state.
//
// # Contract
//
//   - Get reports absence via the boolean, never via the error. The error
//     is reserved for real storage faults (disk, network).
//   - Set and Delete are idempotent.
//   - Implementations must be safe for concurrent use.
//
// The portal treats the store as synchronous string storage: values are
// either raw tokens or JSON documents, and the state layer owns all
// serialization.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store used in tests and as the fallback when
// no session file or Redis URL is configured. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key, if any.
func (store *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value.
func (store *MemoryStore) Set(_ context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.values, key)
	return nil
}
