// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"slices"
	"sort"

	"github.com/canonical/identity-db-sync/internal/types"
)

var _ RegistryInterface = (*Registry)(nil)

// Registry is the immutable set of relevant groups, keyed by group ID.
type Registry struct {
	groups map[string]types.Group
	ids    []string
}

func (r *Registry) Contains(id string) bool {
	_, ok := r.groups[id]
	return ok
}

func (r *Registry) Get(id string) (types.Group, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// IDs returns the sorted group IDs.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		names = append(names, r.groups[id].Name)
	}
	return names
}

func (r *Registry) Groups() []types.Group {
	groups := make([]types.Group, 0, len(r.ids))
	for _, id := range r.ids {
		groups = append(groups, r.groups[id])
	}
	return groups
}

func (r *Registry) Len() int {
	return len(r.ids)
}

// NewRegistry validates and freezes the given groups. The role of a group
// without one defaults to its name, or its ID when unnamed.
func NewRegistry(groups ...types.Group) (*Registry, error) {
	r := new(Registry)
	r.groups = make(map[string]types.Group, len(groups))

	for _, g := range groups {
		if g.ID == "" {
			return nil, NewValidationError("id", "group id must not be empty", "NewRegistry")
		}
		if _, ok := r.groups[g.ID]; ok {
			return nil, NewDuplicateGroupError(g.ID, "NewRegistry")
		}

		if g.Role == "" {
			g.Role = g.Name
		}
		if g.Role == "" {
			g.Role = g.ID
		}

		r.groups[g.ID] = g
		r.ids = append(r.ids, g.ID)
	}

	sort.Strings(r.ids)

	return r, nil
}
