// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Store persisted as a single JSON document on disk.
//
// # Durability
//
// This is the default persistence backend: the session survives portal
// restarts the same way a browser profile survives closing a tab. Every
// write rewrites the whole document via a temp-file rename, so a crash
// mid-write leaves either the old or the new document, never a torn one.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileStore loads (or initializes) the JSON document at path.
//
// A missing file is not an error; it simply means a fresh session. A file
// that exists but cannot be parsed is an error, because silently discarding
// it would log the operator out without explanation.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("session: failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &store.values); err != nil {
		return nil, fmt.Errorf("session: failed to parse %s: %w", path, err)
	}

	return store, nil
}

// Get returns the value stored under key, if any.
func (store *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	value, ok := store.values[key]
	return value, ok, nil
}

// Set stores value under key and flushes the document to disk.
func (store *FileStore) Set(_ context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return store.flushLocked()
}

// Delete removes key and flushes the document to disk.
func (store *FileStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.values[key]; !ok {
		return nil
	}

	delete(store.values, key)
	return store.flushLocked()
}

// flushLocked rewrites the backing file. Caller must hold the mutex.
func (store *FileStore) flushLocked() error {

	// ── 1. Serialize the full document ──
	raw, err := json.MarshalIndent(store.values, "", "  ")
	if err != nil {
		return fmt.Errorf("session: failed to serialize store: %w", err)
	}

	// ── 2. Write to a sibling temp file ──
	// 0600: the document carries a live bearer token.
	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0o600); err != nil {
		return fmt.Errorf("session: failed to write %s: %w", tempPath, err)
	}

	// ── 3. Atomically replace the document ──
	if err := os.Rename(tempPath, store.path); err != nil {
		return fmt.Errorf("session: failed to replace %s: %w", store.path, err)
	}

	return nil
}

// EnsureParentDir creates the directory holding the session file.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: failed to create %s: %w", dir, err)
	}
	return nil
}
