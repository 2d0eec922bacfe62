// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/identity-db-sync/internal/types"
)

const cacheTable = "identity_cache"

var cacheColumns = []string{"user_id", "user_name", "role_name", "state", "event_time", "updated_at", "expires_at"}

const lastWriterWins = `ON CONFLICT (user_id) DO UPDATE SET
	user_name = EXCLUDED.user_name,
	role_name = EXCLUDED.role_name,
	state = EXCLUDED.state,
	event_time = EXCLUDED.event_time,
	updated_at = EXCLUDED.updated_at,
	expires_at = EXCLUDED.expires_at
WHERE (identity_cache.event_time < EXCLUDED.event_time
		OR (identity_cache.event_time = EXCLUDED.event_time
			AND (EXCLUDED.state = 'tombstone' OR identity_cache.state = 'managed')))
	AND NOT (identity_cache.state = 'managed' AND EXCLUDED.state = 'tombstone' AND EXCLUDED.user_name = '')`

// eventTime matches the microsecond precision of TIMESTAMPTZ so equal event
// times compare equal once stored.
func eventTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*types.CacheEntry, error) {
	var (
		e         types.CacheEntry
		state     string
		expiresAt sql.NullTime
	)

	if err := row.Scan(&e.UserID, &e.Username, &e.Role, &state, &e.EventTime, &e.UpdatedAt, &expiresAt); err != nil {
		return nil, err
	}

	e.State = types.CacheState(state)
	if expiresAt.Valid {
		t := expiresAt.Time
		e.ExpiresAt = &t
	}

	return &e, nil
}

// Get returns the username of a managed user.
func (s *Storage) Get(ctx context.Context, userID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Get")
	defer span.End()

	entry, err := s.Lookup(ctx, userID)
	if err != nil {
		return "", err
	}

	if !entry.Managed() {
		return "", types.ErrCacheEntryNotFound
	}

	return entry.Username, nil
}

// Lookup returns the stored entry, tombstones included, or nil when absent.
func (s *Storage) Lookup(ctx context.Context, userID string) (*types.CacheEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Lookup")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(cacheColumns...).
		From(cacheTable).
		Where(sq.Eq{"user_id": userID}).
		QueryRowContext(ctx)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query identity cache: %v", err)
	}

	return entry, nil
}

// ListManaged returns every managed entry ordered by user ID.
func (s *Storage) ListManaged(ctx context.Context) ([]*types.CacheEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListManaged")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(cacheColumns...).
		From(cacheTable).
		Where(sq.Eq{"state": string(types.CacheStateManaged)}).
		OrderBy("user_id ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query managed users: %v", err)
	}
	defer rows.Close()

	entries := make([]*types.CacheEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity cache entry: %v", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating managed users: %v", err)
	}

	return entries, nil
}

func (s *Storage) upsert(ctx context.Context, e *types.CacheEntry) error {
	var expiresAt sql.NullTime
	if e.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *e.ExpiresAt, Valid: true}
	}

	res, err := s.db.Statement(ctx).
		Insert(cacheTable).
		Columns(cacheColumns...).
		Values(e.UserID, e.Username, e.Role, string(e.State), eventTime(e.EventTime), time.Now().UTC(), expiresAt).
		Suffix(lastWriterWins).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to write identity cache: %v", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %v", err)
	}

	if n == 0 {
		return types.ErrStaleWrite
	}

	return nil
}

// Put stores a managed entry unless newer state is already stored.
func (s *Storage) Put(ctx context.Context, e *types.CacheEntry) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Put")
	defer span.End()

	entry := *e
	entry.State = types.CacheStateManaged
	entry.ExpiresAt = nil

	return s.upsert(ctx, &entry)
}

// Tombstone records the deletion of userID at the given event time, naming the
// account being dropped if there is one.
func (s *Storage) Tombstone(ctx context.Context, userID, username string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Tombstone")
	defer span.End()

	expiresAt := at.Add(s.tombstoneTTL)

	return s.upsert(ctx, &types.CacheEntry{
		UserID:    userID,
		Username:  username,
		State:     types.CacheStateTombstone,
		EventTime: at,
		ExpiresAt: &expiresAt,
	})
}

// Release removes the managed entry written for the event at the given time.
// Any other state, including newer writes, is left untouched.
func (s *Storage) Release(ctx context.Context, userID string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Release")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete(cacheTable).
		Where(sq.Eq{
			"user_id":    userID,
			"state":      string(types.CacheStateManaged),
			"event_time": eventTime(at),
		}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to release identity cache entry: %v", err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.Delete")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete(cacheTable).
		Where(sq.Eq{"user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete identity cache entry: %v", err)
	}

	return nil
}

// PurgeExpired removes tombstones past their expiry.
func (s *Storage) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.PurgeExpired")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete(cacheTable).
		Where(sq.Eq{"state": string(types.CacheStateTombstone)}).
		Where(sq.Lt{"expires_at": now.UTC()}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tombstones: %v", err)
	}

	return res.RowsAffected()
}
