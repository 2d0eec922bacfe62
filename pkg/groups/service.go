// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package groups

import (
	"context"
	"errors"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

type Resolver struct {
	directory DirectoryInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Resolve builds a registry from explicit groups plus display names looked up
// once in the directory. A name already covered by an explicit group is not looked up.
func (r *Resolver) Resolve(ctx context.Context, explicit []types.Group, names []string) (*Registry, error) {
	ctx, span := r.tracer.Start(ctx, "groups.Resolver.Resolve")
	defer span.End()

	groups := make([]types.Group, 0, len(explicit)+len(names))
	groups = append(groups, explicit...)

	known := make(map[string]bool, len(explicit))
	for _, g := range explicit {
		known[g.Name] = true
	}

	for _, name := range names {
		if known[name] {
			continue
		}

		if r.directory == nil {
			return nil, NewResolutionError(name, "Resolve", errors.New("no directory configured"))
		}

		id, err := r.directory.GetGroupID(ctx, name)
		if errors.Is(err, types.ErrGroupNotFound) {
			return nil, NewGroupNotFoundError(name, "Resolve")
		}
		if err != nil {
			return nil, NewResolutionError(name, "Resolve", err)
		}

		r.logger.Infof("resolved group %s to %s", name, id)
		groups = append(groups, types.Group{ID: id, Name: name, Role: name})
		known[name] = true
	}

	if len(groups) == 0 {
		return nil, NewValidationError("groups", "at least one relevant group is required", "Resolve")
	}

	return NewRegistry(groups...)
}

func NewResolver(
	directory DirectoryInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Resolver {
	r := new(Resolver)

	r.directory = directory

	r.monitor = monitor
	r.tracer = tracer
	r.logger = logger

	return r
}
