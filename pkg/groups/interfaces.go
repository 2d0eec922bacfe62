// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"

	"github.com/canonical/identity-db-sync/internal/types"
)

// RegistryInterface is the read-only view of the relevant groups.
type RegistryInterface interface {
	Contains(string) bool
	Get(string) (types.Group, bool)
	IDs() []string
	Names() []string
	Groups() []types.Group
	Len() int
}

// DirectoryInterface resolves group display names to IDs.
type DirectoryInterface interface {
	GetGroupID(context.Context, string) (string, error)
}
