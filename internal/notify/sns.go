// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/canonical/identity-db-sync/internal/awssdk"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

const Subject = "Identity to database user sync failed"

// SNSAPI is the subset of the SNS client in use.
type SNSAPI interface {
	Publish(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes failure notifications to an SNS topic.
type SNSSink struct {
	api      SNSAPI
	topicARN string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Notify publishes f. Delivery errors are logged and dropped.
func (s *SNSSink) Notify(ctx context.Context, f types.Failure) {
	ctx, span := s.tracer.Start(ctx, "notify.SNSSink.Notify")
	defer span.End()

	if s.topicARN == "" {
		s.logger.Warnf("no SNS topic configured, dropping failure notification for %s %s", f.Kind, f.UserID)
		return
	}

	out, err := s.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(Subject),
		Message:  aws.String(f.Body()),
	})
	if err != nil {
		s.monitor.SetDependencyAvailability(map[string]string{"component": "sns"}, 0)
		s.logger.Errorf("failed to publish failure notification: %v", awssdk.Classify(err))
		return
	}
	s.monitor.SetDependencyAvailability(map[string]string{"component": "sns"}, 1)

	s.logger.Infof("published failure notification %s", aws.ToString(out.MessageId))
}

func NewSNSSink(api SNSAPI, topicARN string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *SNSSink {
	s := new(SNSSink)

	s.api = api
	s.topicARN = topicARN

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
