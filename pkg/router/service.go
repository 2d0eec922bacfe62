// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"context"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	topology  *Topology
	registry  RegistryInterface
	publisher PublisherInterface
	enricher  EnricherInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Topology() *Topology {
	return s.topology
}

// Route forwards the event along every edge leaving channel whose filter it
// passes and returns the number of forwards. Forwarding is not deduplicated.
func (s *Service) Route(ctx context.Context, channel string, e *types.DirectoryEvent) (int, error) {
	ctx, span := s.tracer.Start(ctx, "router.Service.Route")
	defer span.End()

	if channel == "" {
		channel = s.topology.Entry()
	}

	edges := s.topology.EdgesFrom(channel)
	if len(edges) == 0 {
		return 0, fmt.Errorf("channel %q has no outgoing edges", channel)
	}

	forwarded := 0
	for _, edge := range edges {
		if !edge.Filter.Matches(e, s.registry) {
			s.logger.Debugf("event %s dropped on %s -> %s", e, edge.From, edge.To)
			continue
		}

		out := *e
		if edge.Enrich && s.enricher != nil {
			if err := s.enricher.Enrich(ctx, &out); err != nil {
				return forwarded, fmt.Errorf("failed to enrich %s: %w", e, err)
			}
		}

		bus := s.topology.Channels[edge.To].Bus
		if err := s.publisher.Publish(ctx, &out, bus); err != nil {
			return forwarded, fmt.Errorf("failed to forward %s to %s: %w", e, edge.To, err)
		}

		s.logger.Infof("forwarded %s from %s to %s", e, edge.From, edge.To)
		forwarded++
	}

	return forwarded, nil
}

func NewService(
	topology *Topology,
	registry RegistryInterface,
	publisher PublisherInterface,
	enricher EnricherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.topology = topology
	s.registry = registry
	s.publisher = publisher
	s.enricher = enricher

	s.monitor = monitor
	s.tracer = tracer
	s.logger = logger

	return s
}
