// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

// Package filter decides which directory events are relevant to the database.
package filter

import (
	"fmt"
	"slices"

	"github.com/canonical/identity-db-sync/internal/types"
)

// GroupSet is the minimal view of the group registry a filter needs.
type GroupSet interface {
	Contains(string) bool
}

// Matches is the group filter: membership changes pass only for relevant
// groups, user deletions always pass and everything else is dropped.
func Matches(e *types.DirectoryEvent, groups GroupSet) bool {
	if e == nil {
		return false
	}

	switch e.Kind {
	case types.MemberAddedToGroup, types.MemberRemovedFromGroup:
		return groups != nil && groups.Contains(e.GroupID)
	case types.UserDeleted:
		return true
	default:
		return false
	}
}

type Type string

const (
	TypeGroup Type = "group"
	TypeAll   Type = "all"
	TypeKinds Type = "kinds"
)

// EdgeFilter is the predicate attached to a routing edge.
type EdgeFilter struct {
	Type  Type              `yaml:"type" json:"type"`
	Kinds []types.EventKind `yaml:"kinds,omitempty" json:"kinds,omitempty"`
}

func Group() EdgeFilter { return EdgeFilter{Type: TypeGroup} }
func All() EdgeFilter   { return EdgeFilter{Type: TypeAll} }

func Kinds(kinds ...types.EventKind) EdgeFilter {
	return EdgeFilter{Type: TypeKinds, Kinds: kinds}
}

// PassThrough reports whether the filter forwards every event.
func (f EdgeFilter) PassThrough() bool {
	return f.Type == TypeAll
}

func (f EdgeFilter) Validate() error {
	switch f.Type {
	case TypeGroup, TypeAll:
		return nil
	case TypeKinds:
		if len(f.Kinds) == 0 {
			return fmt.Errorf("kinds filter needs at least one kind")
		}
		for _, k := range f.Kinds {
			if !k.Known() {
				return fmt.Errorf("unknown event kind %q", k)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown filter type %q", f.Type)
	}
}

func (f EdgeFilter) Matches(e *types.DirectoryEvent, groups GroupSet) bool {
	switch f.Type {
	case TypeAll:
		return e != nil
	case TypeGroup:
		return Matches(e, groups)
	case TypeKinds:
		return e != nil && slices.Contains(f.Kinds, e.Kind)
	default:
		return false
	}
}
