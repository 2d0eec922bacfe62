// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sweep

import (
	"context"
	"time"

	"github.com/canonical/identity-db-sync/internal/types"
)

type RegistryInterface interface {
	Groups() []types.Group
}

// DirectoryInterface provides the desired state.
type DirectoryInterface interface {
	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
	IsMemberOfGroups(ctx context.Context, userID string, groupIDs []string) (map[string]bool, error)
}

// CacheInterface provides the current state.
type CacheInterface interface {
	ListManaged(ctx context.Context) ([]*types.CacheEntry, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
