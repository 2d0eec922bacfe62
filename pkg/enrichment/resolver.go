// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package enrichment

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

var ErrIdentityNotFound = errors.New("identity not found in directory or cache")

type Source string

const (
	SourceDirectory Source = "directory"
	SourceCache     Source = "cache"
)

type Resolution struct {
	Username string
	Source   Source
}

var _ ResolverInterface = (*Resolver)(nil)

// Resolver maps a directory user ID to a username, asking the directory
// first and falling back to the identity cache once the user is gone.
type Resolver struct {
	directory DirectoryInterface
	cache     CacheInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (*Resolution, error) {
	ctx, span := r.tracer.Start(ctx, "enrichment.Resolver.Resolve")
	defer span.End()

	if r.directory != nil {
		user, err := r.directory.DescribeUser(ctx, userID)
		switch {
		case err == nil && user.Username != "":
			return &Resolution{Username: user.Username, Source: SourceDirectory}, nil
		case err == nil, errors.Is(err, types.ErrUserNotFound):
			r.logger.Debugf("user %s not found in directory", userID)
		default:
			return nil, fmt.Errorf("failed to describe user %s: %w", userID, err)
		}
	}

	if r.cache != nil {
		username, err := r.cache.Get(ctx, userID)
		switch {
		case err == nil:
			r.logger.Infof("resolved user %s from identity cache", userID)
			return &Resolution{Username: username, Source: SourceCache}, nil
		case errors.Is(err, types.ErrCacheEntryNotFound):
			r.logger.Debugf("user %s not found in identity cache", userID)
		default:
			return nil, fmt.Errorf("failed to read identity cache for %s: %w", userID, err)
		}
	}

	return nil, ErrIdentityNotFound
}

// NewResolver builds a resolver; either source may be nil.
func NewResolver(directory DirectoryInterface, cache CacheInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.directory = directory
	r.cache = cache

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
