// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/canonical/identity-db-sync/internal/types"
)

var _ StorageInterface = (*MemoryStorage)(nil)

// MemoryStorage is an in-process identity cache with the same last-writer-wins
// semantics as the persistent backends. Used for local runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]types.CacheEntry

	tombstoneTTL time.Duration
}

func (m *MemoryStorage) Get(ctx context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok || e.State != types.CacheStateManaged {
		return "", types.ErrCacheEntryNotFound
	}
	return e.Username, nil
}

func (m *MemoryStorage) Lookup(ctx context.Context, userID string) (*types.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemoryStorage) ListManaged(ctx context.Context) ([]*types.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*types.CacheEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.State == types.CacheStateManaged {
			entries = append(entries, &e)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}

func (m *MemoryStorage) write(e types.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.entries[e.UserID]; ok && !cur.Accepts(&e) {
		return types.ErrStaleWrite
	}

	e.UpdatedAt = time.Now().UTC()
	m.entries[e.UserID] = e
	return nil
}

func (m *MemoryStorage) Put(ctx context.Context, e *types.CacheEntry) error {
	entry := *e
	entry.State = types.CacheStateManaged
	entry.ExpiresAt = nil

	return m.write(entry)
}

func (m *MemoryStorage) Tombstone(ctx context.Context, userID, username string, at time.Time) error {
	expiresAt := at.Add(m.tombstoneTTL)

	return m.write(types.CacheEntry{
		UserID:    userID,
		Username:  username,
		State:     types.CacheStateTombstone,
		EventTime: at,
		ExpiresAt: &expiresAt,
	})
}

func (m *MemoryStorage) Release(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[userID]; ok && e.State == types.CacheStateManaged && e.EventTime.Equal(at) {
		delete(m.entries, userID)
	}
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
	return nil
}

func (m *MemoryStorage) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, e := range m.entries {
		if e.State == types.CacheStateTombstone && e.ExpiresAt != nil && e.ExpiresAt.Before(now) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func NewMemoryStorage(tombstoneTTL time.Duration) *MemoryStorage {
	m := new(MemoryStorage)

	m.entries = make(map[string]types.CacheEntry)
	m.tombstoneTTL = tombstoneTTL
	if m.tombstoneTTL <= 0 {
		m.tombstoneTTL = DefaultTombstoneTTL
	}

	return m
}
