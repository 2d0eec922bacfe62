// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/identity-db-sync/internal/types"
)

type StorageInterface interface {
	// Identity cache reads, tombstones are reported by Lookup only
	Get(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, userID string) (*types.CacheEntry, error)
	ListManaged(ctx context.Context) ([]*types.CacheEntry, error)

	// Last-writer-wins writes keyed by event time
	Put(ctx context.Context, entry *types.CacheEntry) error
	Tombstone(ctx context.Context, userID, username string, at time.Time) error

	// Release drops the managed entry of an abandoned add, only if still unchanged
	Release(ctx context.Context, userID string, at time.Time) error

	// Unconditional maintenance
	Delete(ctx context.Context, userID string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
