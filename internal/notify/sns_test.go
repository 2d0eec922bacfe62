// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

type fakeSNS struct {
	calls []*sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func newTestSink(api SNSAPI, arn string) *SNSSink {
	return NewSNSSink(api, arn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
}

func TestNotify(t *testing.T) {
	f := new(fakeSNS)
	arn := "arn:aws:sns:eu-west-1:123456789012:identity-db-sync-failures"

	newTestSink(f, arn).Notify(context.Background(), types.Failure{Kind: "DeleteUser", UserID: "u-123", Reason: "boom"})

	if len(f.calls) != 1 {
		t.Fatalf("expected one publish, got %d", len(f.calls))
	}

	in := f.calls[0]
	if aws.ToString(in.TopicArn) != arn || aws.ToString(in.Subject) != Subject {
		t.Fatalf("unexpected publish input %+v", in)
	}
	if msg := aws.ToString(in.Message); !strings.Contains(msg, `"DeleteUser"`) || !strings.Contains(msg, `"u-123"`) {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestNotifyWithoutTopic(t *testing.T) {
	f := new(fakeSNS)

	newTestSink(f, "").Notify(context.Background(), types.Failure{Kind: "DeleteUser"})

	if len(f.calls) != 0 {
		t.Fatalf("expected no publish without a topic")
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	f := &fakeSNS{err: errors.New("AuthorizationError")}

	// must not panic or block
	newTestSink(f, "arn:aws:sns:eu-west-1:123456789012:t").Notify(context.Background(), types.Failure{Kind: "DeleteUser"})

	if len(f.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(f.calls))
	}
}
