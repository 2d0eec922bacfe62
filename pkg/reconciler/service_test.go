// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
	"github.com/canonical/identity-db-sync/pkg/groups"
)

//go:generate mockgen -build_flags=--mod=mod -package reconciler -destination ./mock_reconciler.go -source=./interfaces.go

type mocks struct {
	db        *MockDatabaseInterface
	cache     *MockCacheInterface
	directory *MockDirectoryInterface
	resolver  *MockResolverInterface
}

func newMockedService(t *testing.T, ctrl *gomock.Controller) (*Service, *mocks) {
	t.Helper()

	m := &mocks{
		db:        NewMockDatabaseInterface(ctrl),
		cache:     NewMockCacheInterface(ctrl),
		directory: NewMockDirectoryInterface(ctrl),
		resolver:  NewMockResolverInterface(ctrl),
	}

	registry, err := groups.NewRegistry(types.Group{ID: "g-dba", Name: "dba"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := NewService(m.db, m.cache, m.directory, m.resolver, registry, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
	return s, m
}

func TestService_ReconcileAdd(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	infraErr := errors.New("connection refused")

	add := &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Time: t0}
	provisioned := &types.CacheEntry{UserID: "u-123", Username: "alice", Role: "dba", State: types.CacheStateManaged, EventTime: t0}

	tests := []struct {
		name       string
		event      *types.DirectoryEvent
		setupMocks func(*mocks)
		outcome    Outcome
		err        error
	}{
		{
			name:  "provision new user",
			event: add,
			setupMocks: func(m *mocks) {
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil),
					m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil),
					m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil),
					m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
						func(_ context.Context, e *types.CacheEntry) error {
							if e.UserID != "u-123" || e.Username != "alice" || e.Role != "dba" || !e.EventTime.Equal(t0) {
								t.Fatalf("unexpected cache entry %+v", e)
							}
							return nil
						},
					),
					m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil),
					m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(provisioned, nil),
				)
			},
			outcome: OutcomeProvisioned,
		},
		{
			name:  "enriched payload skips the directory",
			event: &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Username: "alice", RoleName: "readonly", Time: t0},
			setupMocks: func(m *mocks) {
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(provisioned, nil),
				)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
				m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil)
				m.db.EXPECT().GrantRole(gomock.Any(), "alice", "readonly").Return(nil)
			},
			outcome: OutcomeProvisioned,
		},
		{
			name:  "managed user keeps cached name",
			event: &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Username: "alice.renamed", Time: t0},
			setupMocks: func(m *mocks) {
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", Username: "alice", State: types.CacheStateManaged, EventTime: t0.Add(-time.Hour)}, nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(provisioned, nil),
				)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(true, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
				m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil)
				m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(nil)
			},
			outcome: OutcomeProvisioned,
		},
		{
			name:  "newer cache state wins",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", State: types.CacheStateTombstone, EventTime: t0.Add(time.Second)}, nil)
			},
			outcome: OutcomeStale,
		},
		{
			name:  "removal in the same second wins",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", State: types.CacheStateTombstone, EventTime: t0}, nil)
			},
			outcome: OutcomeStale,
		},
		{
			name:  "user gone from directory",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(nil, types.ErrUserNotFound)
			},
			outcome: OutcomeFailed,
			err:     ErrUnresolvableIdentity,
		},
		{
			name:  "directory unavailable",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(nil, infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
		{
			name:  "existing unmanaged account is not adopted",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil).Times(2)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(true, nil)
			},
			outcome: OutcomeFailed,
			err:     ErrUnmanagedConflict,
		},
		{
			name:  "account provisioned by a concurrent duplicate",
			event: add,
			setupMocks: func(m *mocks) {
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(provisioned, nil).Times(2),
				)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(true, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
				m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil)
				m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(nil)
			},
			outcome: OutcomeProvisioned,
		},
		{
			name:  "invalid username is not retried",
			event: &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Username: "alice=admin", Time: t0},
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice=admin").Return(false, fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, "alice=admin"))
			},
			outcome: OutcomeFailed,
			err:     ErrUnresolvableIdentity,
		},
		{
			name:  "newer state cached before creation",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(types.ErrStaleWrite)
			},
			outcome: OutcomeStale,
		},
		{
			name:  "cache failure creates nothing",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
		{
			name:  "create failure releases the cache entry",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				gomock.InOrder(
					m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
					m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(infraErr),
					m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil),
					m.cache.EXPECT().Release(gomock.Any(), "u-123", t0).Return(nil),
				)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
		{
			name:  "grant failure rolls back a new user",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				gomock.InOrder(
					m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
					m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil),
					m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(infraErr),
					m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil),
					m.cache.EXPECT().Release(gomock.Any(), "u-123", t0).Return(nil),
				)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
		{
			name:  "failed rollback keeps the cache entry",
			event: add,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
				m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil)
				m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(infraErr)
				m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrPartialCommit,
		},
		{
			name:  "concurrent newer deletion drops the account again",
			event: add,
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().DescribeUser(gomock.Any(), "u-123").Return(&types.DirectoryUser{UserID: "u-123", Username: "alice"}, nil)
				m.db.EXPECT().UserExists(gomock.Any(), "alice").Return(false, nil)
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil),
					m.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
					m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil),
					m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", State: types.CacheStateTombstone, EventTime: t0.Add(time.Second)}, nil),
					m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", State: types.CacheStateTombstone, EventTime: t0.Add(time.Second)}, nil),
				)
			},
			outcome: OutcomeStale,
		},
		{
			name:       "irrelevant group is filtered",
			event:      &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-other", Time: t0},
			setupMocks: func(m *mocks) {},
			outcome:    OutcomeFiltered,
		},
		{
			name:       "user creation alone is filtered",
			event:      &types.DirectoryEvent{Kind: types.UserCreated, UserID: "u-123", Username: "alice", Time: t0},
			setupMocks: func(m *mocks) {},
			outcome:    OutcomeFiltered,
		},
		{
			name:       "invalid event",
			event:      &types.DirectoryEvent{Kind: types.MemberAddedToGroup, GroupID: "g-dba", Time: t0},
			setupMocks: func(m *mocks) {},
			outcome:    OutcomeFailed,
			err:        ErrInvalidEvent,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newMockedService(t, ctrl)
			test.setupMocks(m)

			outcome, err := s.Reconcile(context.Background(), test.event)

			if outcome != test.outcome {
				t.Fatalf("expected outcome %s, got %s", test.outcome, outcome)
			}
			if !errors.Is(err, test.err) {
				t.Fatalf("expected error %v, got %v", test.err, err)
			}
		})
	}
}

func TestService_ReconcileRemove(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	infraErr := errors.New("connection refused")

	managed := &types.CacheEntry{UserID: "u-123", Username: "alice", Role: "dba", State: types.CacheStateManaged, EventTime: t0.Add(-time.Hour)}
	tombstone := &types.CacheEntry{UserID: "u-123", Username: "alice", State: types.CacheStateTombstone, EventTime: t0}
	deleted := &types.DirectoryEvent{Kind: types.UserDeleted, UserID: "u-123", Time: t0}
	removed := &types.DirectoryEvent{Kind: types.MemberRemovedFromGroup, UserID: "u-123", GroupID: "g-dba", Time: t0}

	tests := []struct {
		name       string
		event      *types.DirectoryEvent
		setupMocks func(*mocks)
		outcome    Outcome
		err        error
	}{
		{
			name:  "deprovision managed user resolved from cache",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(&enrichment.Resolution{Username: "alice", Source: enrichment.SourceCache}, nil)
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil),
					m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(nil),
					m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(tombstone, nil),
				)
			},
			outcome: OutcomeDeprovisioned,
		},
		{
			name:  "cached name is authoritative",
			event: removed,
			setupMocks: func(m *mocks) {
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(tombstone, nil),
				)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(&enrichment.Resolution{Username: "alice.renamed", Source: enrichment.SourceDirectory}, nil)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(nil)
				m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil)
			},
			outcome: OutcomeDeprovisioned,
		},
		{
			name:  "replayed removal finishes an unconfirmed drop",
			event: removed,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(tombstone, nil).Times(2)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(nil)
				m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil)
			},
			outcome: OutcomeDeprovisioned,
		},
		{
			name:  "older removal is ignored",
			event: removed,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", Username: "alice", State: types.CacheStateManaged, EventTime: t0.Add(time.Minute)}, nil)
			},
			outcome: OutcomeStale,
		},
		{
			name:  "never managed removal is a logged no-op",
			event: removed,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(&enrichment.Resolution{Username: "alice", Source: enrichment.SourceDirectory}, nil)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "", t0).Return(nil)
			},
			outcome: OutcomeUnmanaged,
		},
		{
			name:  "never managed deletion is a logged no-op",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "", t0).Return(nil)
			},
			outcome: OutcomeUnmanaged,
		},
		{
			name:  "unresolvable removal is escalated",
			event: removed,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "", t0).Return(nil)
			},
			outcome: OutcomeUnmanaged,
			err:     ErrUnresolvableIdentity,
		},
		{
			name:  "tombstone failure drops nothing",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, infraErr)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
		{
			name:  "drop failure after the tombstone is a partial commit",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(nil)
				m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrPartialCommit,
		},
		{
			name:  "newer add keeps the account",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil)
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(types.ErrStaleWrite)
			},
			outcome: OutcomeStale,
		},
		{
			name:  "concurrent newer add restores the account",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "u-123").Return(nil, enrichment.ErrIdentityNotFound)
				gomock.InOrder(
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(managed, nil),
					m.cache.EXPECT().Tombstone(gomock.Any(), "u-123", "alice", t0).Return(nil),
					m.db.EXPECT().DropUser(gomock.Any(), "alice").Return(nil),
					m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(&types.CacheEntry{UserID: "u-123", Username: "alice", Role: "dba", State: types.CacheStateManaged, EventTime: t0.Add(time.Second)}, nil),
					m.db.EXPECT().CreateUser(gomock.Any(), "alice").Return(nil),
					m.db.EXPECT().GrantRole(gomock.Any(), "alice", "dba").Return(nil),
				)
			},
			outcome: OutcomeStale,
		},
		{
			name:       "removal from irrelevant group is filtered",
			event:      &types.DirectoryEvent{Kind: types.MemberRemovedFromGroup, UserID: "u-123", GroupID: "g-other", Time: t0},
			setupMocks: func(m *mocks) {},
			outcome:    OutcomeFiltered,
		},
		{
			name:  "cache unavailable",
			event: deleted,
			setupMocks: func(m *mocks) {
				m.cache.EXPECT().Lookup(gomock.Any(), "u-123").Return(nil, infraErr)
			},
			outcome: OutcomeFailed,
			err:     ErrTransient,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newMockedService(t, ctrl)
			test.setupMocks(m)

			outcome, err := s.Reconcile(context.Background(), test.event)

			if outcome != test.outcome {
				t.Fatalf("expected outcome %s, got %s", test.outcome, outcome)
			}
			if !errors.Is(err, test.err) {
				t.Fatalf("expected error %v, got %v", test.err, err)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	e := &types.DirectoryEvent{Kind: types.UserDeleted, UserID: "u-1"}

	tests := []struct {
		err       error
		retryable bool
	}{
		{err: nil, retryable: false},
		{err: errors.New("boom"), retryable: true},
		{err: NewTransientError(e, "DropUser", errors.New("boom")), retryable: true},
		{err: NewPartialCommitError(e, "alice", "Tombstone", errors.New("boom")), retryable: true},
		{err: NewUnresolvableIdentityError(e, "Resolve", enrichment.ErrIdentityNotFound), retryable: false},
		{err: NewUnmanagedConflictError(e, "alice", "CreateUser"), retryable: false},
		{err: databaseError(e, "alice=admin", "CreateUser", fmt.Errorf("%w: too long", types.ErrInvalidIdentifier)), retryable: false},
		{err: databaseError(e, "alice", "CreateUser", errors.New("too many connections")), retryable: true},
		{err: NewInvalidEventError("Reconcile", types.ErrInvalidEvent), retryable: false},
		{err: types.ErrInvalidEvent, retryable: false},
	}

	for _, test := range tests {
		if got := Retryable(test.err); got != test.retryable {
			t.Fatalf("Retryable(%v) = %v, want %v", test.err, got, test.retryable)
		}
	}
}
