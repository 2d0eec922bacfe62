// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

const (
	Stage = "sweep"

	DefaultConcurrency = 4
)

var ErrNoGroups = errors.New("no relevant groups configured")

// ApplyFunc feeds a synthesized event through reconciliation.
type ApplyFunc func(context.Context, *types.DirectoryEvent) error

// Report summarizes one sweep.
type Report struct {
	Desired int   `json:"desired"`
	Managed int   `json:"managed"`
	Added   int64 `json:"added"`
	Removed int64 `json:"removed"`
	Kept    int64 `json:"kept"`
	Failed  int64 `json:"failed"`
	Purged  int64 `json:"purged"`
}

// Sweeper repairs drift between directory group membership and the managed
// users recorded in the identity cache.
type Sweeper struct {
	registry  RegistryInterface
	directory DirectoryInterface
	cache     CacheInterface
	apply     ApplyFunc

	concurrency int
	limiter     *rate.Limiter
	now         func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "sweep.Sweeper.Run")
	defer span.End()

	groups := s.registry.Groups()
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	// a partial view of the directory would remove legitimate members
	desired, err := s.desired(ctx, groups)
	if err != nil {
		return nil, err
	}

	managed, err := s.cache.ListManaged(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed users: %w", err)
	}

	report := &Report{Desired: len(desired), Managed: len(managed)}
	now := s.now()

	current := make(map[string]*types.CacheEntry, len(managed))
	for _, e := range managed {
		current[e.UserID] = e
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, userID := range sortedKeys(desired) {
		if _, ok := current[userID]; ok {
			continue
		}

		e := &types.DirectoryEvent{
			Kind:    types.MemberAddedToGroup,
			UserID:  userID,
			GroupID: desired[userID],
			EventID: uuid.NewString(),
			Time:    now,
		}
		g.Go(func() error {
			s.run(gctx, e, &report.Added, &report.Failed)
			return nil
		})
	}

	ids := groupIDs(groups)
	for _, entry := range managed {
		if _, ok := desired[entry.UserID]; ok {
			continue
		}

		entry := entry
		g.Go(func() error {
			s.remove(gctx, entry, groups, ids, now, report)
			return nil
		})
	}

	// goroutines never fail, per-user errors are counted
	_ = g.Wait()

	purged, err := s.cache.PurgeExpired(ctx, now)
	if err != nil {
		s.logger.Errorf("failed to purge expired tombstones: %v", err)
	} else {
		report.Purged = purged
	}

	s.logger.Infof(
		"sweep complete: %d desired, %d managed, %d added, %d removed, %d kept, %d failed, %d purged",
		report.Desired, report.Managed, report.Added, report.Removed, report.Kept, report.Failed, report.Purged,
	)

	return report, nil
}

func (s *Sweeper) desired(ctx context.Context, groups []types.Group) (map[string]string, error) {
	desired := make(map[string]string)

	for _, g := range groups {
		members, err := s.directory.ListGroupMembers(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of group %s: %w", g.ID, err)
		}

		for _, m := range members {
			if _, ok := desired[m]; !ok {
				desired[m] = g.ID
			}
		}
	}

	return desired, nil
}

func (s *Sweeper) remove(ctx context.Context, entry *types.CacheEntry, groups []types.Group, ids []string, now time.Time, report *Report) {
	membership, err := s.directory.IsMemberOfGroups(ctx, entry.UserID, ids)
	if errors.Is(err, types.ErrUserNotFound) {
		// the user was deleted and its DeleteUser event never arrived
		s.run(ctx, &types.DirectoryEvent{
			Kind:     types.UserDeleted,
			UserID:   entry.UserID,
			Username: entry.Username,
			EventID:  uuid.NewString(),
			Time:     now,
		}, &report.Removed, &report.Failed)
		return
	}
	if err != nil {
		s.logger.Errorf("failed to confirm membership of %s: %v", entry.UserID, err)
		s.count(types.MemberRemovedFromGroup, "failed")
		atomic.AddInt64(&report.Failed, 1)
		return
	}

	for _, member := range membership {
		if member {
			// joined after the group listing
			s.logger.Debugf("user %s is still a member, keeping %s", entry.UserID, entry.Username)
			atomic.AddInt64(&report.Kept, 1)
			return
		}
	}

	e := &types.DirectoryEvent{
		Kind:     types.MemberRemovedFromGroup,
		UserID:   entry.UserID,
		GroupID:  groupForRole(groups, entry.Role),
		Username: entry.Username,
		EventID:  uuid.NewString(),
		Time:     now,
	}
	s.run(ctx, e, &report.Removed, &report.Failed)
}

func (s *Sweeper) run(ctx context.Context, e *types.DirectoryEvent, ok, failed *int64) {
	err := s.limiter.Wait(ctx)
	if err == nil {
		err = s.apply(ctx, e)
	}

	if err != nil {
		s.logger.Errorf("sweep failed to apply %s: %v", e, err)
		s.count(e.Kind, "failed")
		atomic.AddInt64(failed, 1)
		return
	}

	s.logger.Infof("sweep applied %s", e)
	s.count(e.Kind, "applied")
	atomic.AddInt64(ok, 1)
}

func (s *Sweeper) count(kind types.EventKind, outcome string) {
	s.monitor.IncrementEventCount(map[string]string{"stage": Stage, "kind": string(kind), "outcome": outcome})
}

// groupForRole picks the registry group granting role, so that the removal
// passes the relevance filter.
func groupForRole(groups []types.Group, role string) string {
	for _, g := range groups {
		if g.Role == role {
			return g.ID
		}
	}
	return groups[0].ID
}

func groupIDs(groups []types.Group) []string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Option func(*Sweeper)

func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRate caps the synthesized events applied per second, sharing the
// database and the directory with live traffic.
func WithRate(rps float64) Option {
	return func(s *Sweeper) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func NewSweeper(registry RegistryInterface, directory DirectoryInterface, cache CacheInterface, apply ApplyFunc, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface, opts ...Option) *Sweeper {
	s := new(Sweeper)

	s.registry = registry
	s.directory = directory
	s.cache = cache
	s.apply = apply

	s.concurrency = DefaultConcurrency
	s.limiter = rate.NewLimiter(rate.Inf, 1)
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	for _, opt := range opts {
		opt(s)
	}

	return s
}
