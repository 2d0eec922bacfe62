// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/storage"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
	"github.com/canonical/identity-db-sync/pkg/groups"
)

type emptyDirectory struct{}

func (emptyDirectory) DescribeUser(context.Context, string) (*types.DirectoryUser, error) {
	return nil, types.ErrUserNotFound
}

func TestRouterEnricherIgnoresIdentityCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	cache := storage.NewMemoryStorage(time.Hour)
	if err := cache.Put(ctx, &types.CacheEntry{UserID: "u-123", Username: "alice", State: types.CacheStateManaged, EventTime: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry, err := groups.NewRegistry(types.Group{ID: "g-dba", Name: "dba", Role: "dba"})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	a := &app{
		cache:   cache,
		tracer:  tracing.NewNoopTracer(),
		monitor: monitoring.NewNoopMonitor("test"),
		logger:  logging.NewNoopLogger(),
	}
	enricher := a.routerEnricher(emptyDirectory{}, registry)

	add := &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Time: now}
	if err := enricher.Enrich(ctx, add); !errors.Is(err, enrichment.ErrIdentityNotFound) {
		t.Fatalf("expected %v, got %v", enrichment.ErrIdentityNotFound, err)
	}

	remove := &types.DirectoryEvent{Kind: types.MemberRemovedFromGroup, UserID: "u-123", GroupID: "g-dba", Time: now}
	if err := enricher.Enrich(ctx, remove); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remove.Username != "" {
		t.Fatalf("expected the removal to be forwarded without username, got %s", remove.Username)
	}
	if remove.RoleName != "dba" {
		t.Fatalf("expected role dba, got %s", remove.RoleName)
	}
}
