// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

type fakeEventBridge struct {
	in  *eventbridge.PutEventsInput
	out *eventbridge.PutEventsOutput
	err error
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &eventbridge.PutEventsOutput{Entries: []ebtypes.PutEventsResultEntry{{EventId: aws.String("eb-1")}}}, nil
}

var target = types.BusID{Account: "222222222222", Region: "us-east-1", Name: "SSO-RDS-Sync-Target"}

func newTestPublisher(api EventBridgeAPI) *Publisher {
	return NewPublisher(api, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
}

func TestPublish(t *testing.T) {
	f := new(fakeEventBridge)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	e := &types.DirectoryEvent{Kind: types.MemberAddedToGroup, UserID: "u-123", GroupID: "g-dba", Username: "alice", RoleName: "dba", Time: at}

	if err := newTestPublisher(f).Publish(context.Background(), e, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.in == nil || len(f.in.Entries) != 1 {
		t.Fatalf("expected one entry, got %+v", f.in)
	}

	entry := f.in.Entries[0]
	if aws.ToString(entry.Source) != Source {
		t.Fatalf("unexpected source %s", aws.ToString(entry.Source))
	}
	if aws.ToString(entry.DetailType) != "AddMemberToGroup" {
		t.Fatalf("unexpected detail type %s", aws.ToString(entry.DetailType))
	}
	if aws.ToString(entry.EventBusName) != "arn:aws:events:us-east-1:222222222222:event-bus/SSO-RDS-Sync-Target" {
		t.Fatalf("unexpected bus %s", aws.ToString(entry.EventBusName))
	}

	out := new(types.DirectoryEvent)
	if err := json.Unmarshal([]byte(aws.ToString(entry.Detail)), out); err != nil {
		t.Fatalf("detail is not a directory event: %v", err)
	}
	if out.Username != "alice" || out.RoleName != "dba" || out.EventID == "" || !out.Time.Equal(at) {
		t.Fatalf("unexpected detail %+v", out)
	}
	if e.EventID != "" {
		t.Fatalf("input event must not be modified")
	}
}

func TestPublishDefaultBus(t *testing.T) {
	f := new(fakeEventBridge)

	err := newTestPublisher(f).Publish(context.Background(), &types.DirectoryEvent{Kind: types.UserDeleted, UserID: "u-1"}, types.BusID{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.in.Entries[0].EventBusName != nil {
		t.Fatalf("expected the default bus")
	}
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeEventBridge
	}{
		{
			name: "api error",
			f:    &fakeEventBridge{err: errors.New("throttled")},
		},
		{
			name: "failed entry",
			f: &fakeEventBridge{out: &eventbridge.PutEventsOutput{
				FailedEntryCount: 1,
				Entries:          []ebtypes.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")}},
			}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := newTestPublisher(test.f).Publish(context.Background(), &types.DirectoryEvent{Kind: types.UserDeleted, UserID: "u-1"}, target)
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
