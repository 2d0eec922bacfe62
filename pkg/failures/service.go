// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package failures

import (
	"context"
	"encoding/json"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	sinks []SinkInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Report fans the failure out to every sink. It never fails.
func (s *Service) Report(ctx context.Context, f Failure) {
	ctx, span := s.tracer.Start(ctx, "failures.Service.Report")
	defer span.End()

	s.logger.Errorf("%s: event %s for user %s failed: [%s] %s", f.Stage, f.Kind, f.UserID, f.Code, f.Reason)

	for _, sink := range s.sinks {
		sink.Notify(ctx, f)
	}
}

// HandleDestinationRecord turns a Lambda on-failure destination record into a
// notification. Records that cannot be parsed are forwarded whole.
func (s *Service) HandleDestinationRecord(ctx context.Context, raw json.RawMessage) (*Failure, error) {
	ctx, span := s.tracer.Start(ctx, "failures.Service.HandleDestinationRecord")
	defer span.End()

	f, err := ParseDestinationRecord(raw)
	if err != nil {
		s.logger.Warnf("unparseable failure record, forwarding raw payload: %v", err)
		f = &Failure{Reason: "unparseable failure record", Payload: raw}
	}

	s.Report(ctx, *f)
	return f, err
}

func NewService(sinks []SinkInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.sinks = sinks

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
