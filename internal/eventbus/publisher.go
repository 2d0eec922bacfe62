// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"

	"github.com/canonical/identity-db-sync/internal/awssdk"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

// Source is the EventBridge source of forwarded events.
const Source = "identity-db-sync.router"

// Publisher forwards directory events to EventBridge buses.
type Publisher struct {
	api EventBridgeAPI

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (p *Publisher) Publish(ctx context.Context, e *types.DirectoryEvent, bus types.BusID) error {
	ctx, span := p.tracer.Start(ctx, "eventbus.Publisher.Publish")
	defer span.End()

	out := *e
	if out.EventID == "" {
		out.EventID = uuid.NewString()
	}
	if out.Time.IsZero() {
		out.Time = time.Now().UTC()
	}

	detail, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", e, err)
	}

	entry := ebtypes.PutEventsRequestEntry{
		Source:     aws.String(Source),
		DetailType: aws.String(string(out.Kind)),
		Detail:     aws.String(string(detail)),
		Time:       aws.Time(out.Time),
	}
	if !bus.IsZero() {
		entry.EventBusName = aws.String(bus.ARN())
	}

	res, err := p.api.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: []ebtypes.PutEventsRequestEntry{entry}})
	if err != nil {
		p.monitor.SetDependencyAvailability(map[string]string{"component": "eventbridge"}, 0)
		return fmt.Errorf("failed to put event on %s: %w", bus, awssdk.Classify(err))
	}
	p.monitor.SetDependencyAvailability(map[string]string{"component": "eventbridge"}, 1)

	if res.FailedEntryCount > 0 {
		code, msg := "", ""
		if len(res.Entries) > 0 {
			code = aws.ToString(res.Entries[0].ErrorCode)
			msg = aws.ToString(res.Entries[0].ErrorMessage)
		}
		return fmt.Errorf("event %s rejected by %s: %s %s", out.EventID, bus, code, msg)
	}

	p.logger.Debugf("published %s (%s) to %s", e, out.EventID, bus)
	return nil
}

func NewPublisher(api EventBridgeAPI, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Publisher {
	p := new(Publisher)

	p.api = api

	p.tracer = tracer
	p.monitor = monitor
	p.logger = logger

	return p
}
