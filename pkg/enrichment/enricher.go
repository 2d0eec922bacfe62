// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package enrichment

import (
	"context"
	"errors"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

// Enricher attaches the username and role to events before they leave the
// directory account.
type Enricher struct {
	resolver ResolverInterface
	registry RegistryInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (e *Enricher) Enrich(ctx context.Context, event *types.DirectoryEvent) error {
	ctx, span := e.tracer.Start(ctx, "enrichment.Enricher.Enrich")
	defer span.End()

	if g, ok := e.registry.Get(event.GroupID); ok && event.RoleName == "" {
		event.RoleName = g.Role
	}

	if event.Username != "" {
		return nil
	}

	res, err := e.resolver.Resolve(ctx, event.UserID)
	if err == nil {
		event.Username = res.Username
		return nil
	}

	// removals are resolved again downstream against the identity cache
	if errors.Is(err, ErrIdentityNotFound) && event.Kind.IsRemoval() {
		e.logger.Infof("forwarding %s without username", event)
		return nil
	}

	return err
}

func NewEnricher(resolver ResolverInterface, registry RegistryInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Enricher {
	e := new(Enricher)

	e.resolver = resolver
	e.registry = registry

	e.tracer = tracer
	e.monitor = monitor
	e.logger = logger

	return e
}
