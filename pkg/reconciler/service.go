// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
	"github.com/canonical/identity-db-sync/pkg/filter"
)

type Outcome string

const cleanupTimeout = 10 * time.Second

var errProvisionedMeanwhile = errors.New("user provisioned while the removal was applied")

const (
	OutcomeProvisioned   Outcome = "provisioned"
	OutcomeDeprovisioned Outcome = "deprovisioned"
	OutcomeUnmanaged     Outcome = "unmanaged"
	OutcomeStale         Outcome = "stale"
	OutcomeFiltered      Outcome = "filtered"
	OutcomeFailed        Outcome = "failed"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	db        DatabaseInterface
	cache     CacheInterface
	directory DirectoryInterface
	resolver  ResolverInterface
	registry  RegistryInterface

	grantRoles bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Reconcile applies one directory event to the database and the identity cache.
func (s *Service) Reconcile(ctx context.Context, e *types.DirectoryEvent) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "reconciler.Service.Reconcile")
	defer span.End()

	if err := e.Validate(); err != nil {
		return OutcomeFailed, NewInvalidEventError("Reconcile", err)
	}

	if !filter.Matches(e, s.registry) {
		s.logger.Infof("dropping %s, not relevant", e)
		return OutcomeFiltered, nil
	}

	if e.Kind == types.MemberAddedToGroup {
		return s.add(ctx, e)
	}
	return s.remove(ctx, e)
}

func (s *Service) add(ctx context.Context, e *types.DirectoryEvent) (Outcome, error) {
	entry, err := s.cache.Lookup(ctx, e.UserID)
	if err != nil {
		return OutcomeFailed, NewTransientError(e, "Lookup", err)
	}

	if entry.Supersedes(types.CacheStateManaged, e.Time) {
		s.logger.Infof("ignoring %s, identity cache holds newer %s state", e, entry.State)
		return OutcomeStale, nil
	}

	username, err := s.addUsername(ctx, e, entry)
	if err != nil {
		return OutcomeFailed, err
	}

	role := e.RoleName
	if role == "" {
		if g, ok := s.registry.Get(e.GroupID); ok {
			role = g.Role
		}
	}

	exists, err := s.db.UserExists(ctx, username)
	if err != nil {
		return OutcomeFailed, databaseError(e, username, "UserExists", err)
	}

	if exists && !owns(entry, username) {
		// a concurrent delivery of the same add may have provisioned it
		entry, err = s.cache.Lookup(ctx, e.UserID)
		if err != nil {
			return OutcomeFailed, NewTransientError(e, "Lookup", err)
		}
		if entry.Supersedes(types.CacheStateManaged, e.Time) {
			return OutcomeStale, nil
		}
		if !owns(entry, username) {
			s.logger.Errorf("database user %s exists but is not managed, refusing to adopt it", username)
			return OutcomeFailed, NewUnmanagedConflictError(e, username, "CreateUser")
		}
	}

	createdNow := !exists

	// the entry is written first so that a retry recognises an account this
	// add created even if a later step fails
	err = s.cache.Put(ctx, &types.CacheEntry{
		UserID:    e.UserID,
		Username:  username,
		Role:      role,
		State:     types.CacheStateManaged,
		EventTime: e.Time,
	})
	if errors.Is(err, types.ErrStaleWrite) {
		s.logger.Infof("%s superseded before the account was created", e)
		return OutcomeStale, nil
	}
	if err != nil {
		return OutcomeFailed, NewTransientError(e, "Put", err)
	}

	if err := s.db.CreateUser(ctx, username); err != nil {
		return OutcomeFailed, s.abandon(ctx, e, username, createdNow, "CreateUser", err)
	}

	if s.grantRoles && role != "" {
		if err := s.db.GrantRole(ctx, username, role); err != nil {
			s.logger.Errorf("failed to grant role %s to %s: %v", role, username, err)
			return OutcomeFailed, s.abandon(ctx, e, username, createdNow, "GrantRole", err)
		}
	}

	current, err := s.cache.Lookup(ctx, e.UserID)
	if err != nil {
		return OutcomeFailed, NewTransientError(e, "Lookup", err)
	}
	if !current.Managed() {
		return s.dropSuperseded(ctx, e, username)
	}

	s.logger.Security().UserProvisioned(username, e.UserID, logging.WithContext("group_id", e.GroupID))
	return OutcomeProvisioned, nil
}

// owns reports whether the cache records username as an account this service
// created, including one whose drop is still pending.
func owns(entry *types.CacheEntry, username string) bool {
	return entry != nil && username != "" && entry.Username == username
}

// abandon undoes a failed add. The cache entry is released only once the
// account is known to be gone, otherwise the retry would find an account it
// cannot tell apart from an unmanaged one.
func (s *Service) abandon(ctx context.Context, e *types.DirectoryEvent, username string, createdNow bool, op string, cause error) error {
	if !createdNow {
		return databaseError(e, username, op, cause)
	}

	ctx, cancel := cleanupContext(ctx)
	defer cancel()

	if err := s.db.DropUser(ctx, username); err != nil {
		s.logger.Errorf("rollback of %s failed: %v", username, err)
		return NewPartialCommitError(e, username, op, errors.Join(cause, err))
	}

	if err := s.cache.Release(ctx, e.UserID, e.Time); err != nil {
		s.logger.Warnf("rolled back %s but kept its identity cache entry: %v", username, err)
	} else {
		s.logger.Infof("rolled back creation of %s", username)
	}

	return databaseError(e, username, op, cause)
}

// addUsername picks the account name for an add: the cached name of a managed
// user, else the enriched payload, else a live directory lookup.
func (s *Service) addUsername(ctx context.Context, e *types.DirectoryEvent, entry *types.CacheEntry) (string, error) {
	if entry.Managed() {
		if e.Username != "" && e.Username != entry.Username {
			s.logger.Warnf("user %s is managed as %s, ignoring directory name %s", e.UserID, entry.Username, e.Username)
		}
		return entry.Username, nil
	}

	if e.Username != "" {
		return e.Username, nil
	}

	user, err := s.directory.DescribeUser(ctx, e.UserID)
	if errors.Is(err, types.ErrUserNotFound) {
		return "", NewUnresolvableIdentityError(e, "DescribeUser", err)
	}
	if err != nil {
		return "", NewTransientError(e, "DescribeUser", err)
	}
	if user.Username == "" {
		return "", NewUnresolvableIdentityError(e, "DescribeUser", types.ErrUserNotFound)
	}

	return user.Username, nil
}

// dropSuperseded removes an account created for an add that a newer
// deletion overtook while it was being applied.
func (s *Service) dropSuperseded(ctx context.Context, e *types.DirectoryEvent, username string) (Outcome, error) {
	s.logger.Infof("%s superseded by a newer deletion, dropping %s", e, username)

	dropCtx, cancel := cleanupContext(ctx)
	defer cancel()

	if err := s.db.DropUser(dropCtx, username); err != nil {
		return OutcomeFailed, NewPartialCommitError(e, username, "DropUser", err)
	}

	if _, err := s.restoreNewer(ctx, e); err != nil {
		return OutcomeFailed, err
	}

	return OutcomeStale, nil
}

func (s *Service) remove(ctx context.Context, e *types.DirectoryEvent) (Outcome, error) {
	entry, err := s.cache.Lookup(ctx, e.UserID)
	if err != nil {
		return OutcomeFailed, NewTransientError(e, "Lookup", err)
	}

	if entry.Supersedes(types.CacheStateTombstone, e.Time) {
		s.logger.Infof("ignoring %s, identity cache holds newer %s state", e, entry.State)
		return OutcomeStale, nil
	}

	resolved := e.Username
	var resolveErr error
	if resolved == "" {
		var res *enrichment.Resolution
		res, resolveErr = s.resolver.Resolve(ctx, e.UserID)
		if resolveErr == nil {
			resolved = res.Username
		}
	}

	// a tombstone of this very event naming an account is a removal whose
	// drop was not confirmed
	pending := entry != nil && entry.State == types.CacheStateTombstone && entry.EventTime.Equal(e.Time) && entry.Username != ""

	if !entry.Managed() && !pending {
		return s.removeUnmanaged(ctx, e, entry, resolved, resolveErr)
	}

	username := entry.Username
	if resolved != "" && resolved != username {
		s.logger.Warnf("user %s is managed as %s, directory reports %s", e.UserID, username, resolved)
	}

	// the tombstone goes first: a racing add either loses its cache write or
	// finds the tombstone once its account exists
	err = s.cache.Tombstone(ctx, e.UserID, username, e.Time)
	if errors.Is(err, types.ErrStaleWrite) {
		s.logger.Infof("%s superseded by a newer add, keeping %s", e, username)
		return OutcomeStale, nil
	}
	if err != nil {
		return OutcomeFailed, NewTransientError(e, "Tombstone", err)
	}

	if err := s.db.DropUser(ctx, username); err != nil {
		s.logger.Errorf("recorded removal of %s but failed to drop it: %v", username, err)
		if errors.Is(err, types.ErrInvalidIdentifier) {
			return OutcomeFailed, databaseError(e, username, "DropUser", err)
		}
		return OutcomeFailed, NewPartialCommitError(e, username, "DropUser", err)
	}

	restored, err := s.restoreNewer(ctx, e)
	if err != nil {
		return OutcomeFailed, err
	}
	if restored {
		return OutcomeStale, nil
	}

	s.logger.Security().UserDeprovisioned(username, e.UserID, logging.WithContext("event_type", string(e.Kind)))
	return OutcomeDeprovisioned, nil
}

func (s *Service) removeUnmanaged(ctx context.Context, e *types.DirectoryEvent, entry *types.CacheEntry, resolved string, resolveErr error) (Outcome, error) {
	// the tombstone keeps an older, delayed add from provisioning the user
	err := s.cache.Tombstone(ctx, e.UserID, "", e.Time)
	if errors.Is(err, types.ErrStaleWrite) {
		current, err := s.cache.Lookup(ctx, e.UserID)
		if err != nil {
			return OutcomeFailed, NewTransientError(e, "Lookup", err)
		}
		if current.Managed() && !current.Supersedes(types.CacheStateTombstone, e.Time) {
			// an add provisioned the user after the lookup, the redelivery drops it
			return OutcomeFailed, NewTransientError(e, "Tombstone", errProvisionedMeanwhile)
		}
	} else if err != nil {
		return OutcomeFailed, NewTransientError(e, "Tombstone", err)
	}

	switch {
	// a tombstone means the removal was already applied
	case entry == nil && errors.Is(resolveErr, enrichment.ErrIdentityNotFound) && e.Kind == types.MemberRemovedFromGroup:
		s.logger.Warnf("%s could not be resolved, nothing to remove", e)
		return OutcomeUnmanaged, NewUnresolvableIdentityError(e, "Resolve", resolveErr)
	case resolveErr != nil:
		s.logger.Debugf("%s not resolved: %v", e, resolveErr)
	}

	s.logger.Infof("%s: user %q is not managed, nothing to remove", e, resolved)
	return OutcomeUnmanaged, nil
}

// restoreNewer recreates the account of an add that overtook a drop while
// it ran. It reports whether the cache holds such an add.
func (s *Service) restoreNewer(ctx context.Context, e *types.DirectoryEvent) (bool, error) {
	ctx, cancel := cleanupContext(ctx)
	defer cancel()

	newer, err := s.cache.Lookup(ctx, e.UserID)
	if err != nil {
		return false, NewPartialCommitError(e, "", "Lookup", err)
	}
	if !newer.Managed() {
		return false, nil
	}

	s.logger.Infof("%s overtaken by a newer add, restoring %s", e, newer.Username)

	if err := s.db.CreateUser(ctx, newer.Username); err != nil {
		return true, NewPartialCommitError(e, newer.Username, "CreateUser", err)
	}
	if s.grantRoles && newer.Role != "" {
		if err := s.db.GrantRole(ctx, newer.Username, newer.Role); err != nil {
			return true, NewPartialCommitError(e, newer.Username, "GrantRole", err)
		}
	}

	return true, nil
}

// cleanupContext outlives the invocation deadline so that compensating
// steps still run after the step they undo timed out.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

type Option func(*Service)

// WithRoleGrants enables granting the group role to provisioned users.
func WithRoleGrants(enabled bool) Option {
	return func(s *Service) {
		s.grantRoles = enabled
	}
}

func NewService(
	db DatabaseInterface,
	cache CacheInterface,
	directory DirectoryInterface,
	resolver ResolverInterface,
	registry RegistryInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
	opts ...Option,
) *Service {
	s := new(Service)

	s.db = db
	s.cache = cache
	s.directory = directory
	s.resolver = resolver
	s.registry = registry
	s.grantRoles = true

	s.monitor = monitor
	s.tracer = tracer
	s.logger = logger

	for _, o := range opts {
		o(s)
	}

	return s
}
