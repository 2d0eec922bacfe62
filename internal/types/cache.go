// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"time"
)

var (
	ErrCacheEntryNotFound = errors.New("identity cache entry not found")
	ErrStaleWrite         = errors.New("identity cache holds newer state")
	ErrInvalidIdentifier  = errors.New("invalid database identifier")
)

type CacheState string

const (
	CacheStateManaged   CacheState = "managed"
	CacheStateTombstone CacheState = "tombstone"
)

// CacheEntry maps a directory user ID to the database username created for it.
// A tombstone records the latest deletion of the user and the account it dropped.
type CacheEntry struct {
	UserID    string     `json:"user_id"`
	Username  string     `json:"user_name,omitempty"`
	Role      string     `json:"role_name,omitempty"`
	State     CacheState `json:"state"`
	EventTime time.Time  `json:"event_time"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (c *CacheEntry) Managed() bool {
	return c != nil && c.State == CacheStateManaged
}

// NewerThan reports whether the entry reflects an event strictly later than t.
func (c *CacheEntry) NewerThan(t time.Time) bool {
	return c != nil && c.EventTime.After(t)
}

// Supersedes reports whether the entry wins over a write of state at t.
// Event times within the same second are common, so a tie goes to the tombstone.
func (c *CacheEntry) Supersedes(state CacheState, t time.Time) bool {
	if c == nil {
		return false
	}
	if c.EventTime.Equal(t) {
		return c.State == CacheStateTombstone && state != CacheStateTombstone
	}
	return c.EventTime.After(t)
}

// Accepts reports whether w may replace the stored entry. A tombstone that
// names no account comes from a removal that found nothing to drop, so it
// never replaces a managed entry.
func (c *CacheEntry) Accepts(w *CacheEntry) bool {
	if c == nil {
		return true
	}
	if c.Managed() && w.State == CacheStateTombstone && w.Username == "" {
		return false
	}
	return !c.Supersedes(w.State, w.EventTime)
}
