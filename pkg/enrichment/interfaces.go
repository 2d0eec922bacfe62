// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package enrichment

import (
	"context"

	"github.com/canonical/identity-db-sync/internal/types"
)

type ResolverInterface interface {
	Resolve(context.Context, string) (*Resolution, error)
}

type DirectoryInterface interface {
	DescribeUser(context.Context, string) (*types.DirectoryUser, error)
}

type CacheInterface interface {
	Get(context.Context, string) (string, error)
}

type RegistryInterface interface {
	Get(string) (types.Group, bool)
}
