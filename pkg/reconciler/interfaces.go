// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package reconciler

import (
	"context"
	"time"

	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
)

type ServiceInterface interface {
	Reconcile(context.Context, *types.DirectoryEvent) (Outcome, error)
}

// DatabaseInterface administers database users. Create and drop are idempotent.
type DatabaseInterface interface {
	CreateUser(context.Context, string) error
	DropUser(context.Context, string) error
	UserExists(context.Context, string) (bool, error)
	GrantRole(context.Context, string, string) error
}

// CacheInterface is the identity cache. Put and Tombstone are last-writer-wins
// on the event time and fail with types.ErrStaleWrite when newer state is stored.
// Release undoes a Put only while the entry is unchanged.
type CacheInterface interface {
	Get(context.Context, string) (string, error)
	Lookup(context.Context, string) (*types.CacheEntry, error)
	Put(context.Context, *types.CacheEntry) error
	Tombstone(context.Context, string, string, time.Time) error
	Release(context.Context, string, time.Time) error
	ListManaged(context.Context) ([]*types.CacheEntry, error)
}

type DirectoryInterface interface {
	DescribeUser(context.Context, string) (*types.DirectoryUser, error)
}

type ResolverInterface interface {
	Resolve(context.Context, string) (*enrichment.Resolution, error)
}

type RegistryInterface interface {
	Contains(string) bool
	Get(string) (types.Group, bool)
}
