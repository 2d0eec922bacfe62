// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"context"

	"github.com/canonical/identity-db-sync/internal/types"
)

type ServiceInterface interface {
	Route(context.Context, string, *types.DirectoryEvent) (int, error)
	Topology() *Topology
}

// PublisherInterface delivers an event to a bus across the account boundary.
type PublisherInterface interface {
	Publish(context.Context, *types.DirectoryEvent, BusID) error
}

// EnricherInterface attaches resolved identity data to an event before it is forwarded.
type EnricherInterface interface {
	Enrich(context.Context, *types.DirectoryEvent) error
}

type RegistryInterface interface {
	Contains(string) bool
	IDs() []string
}
