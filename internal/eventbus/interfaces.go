// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package eventbus

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// EventBridgeAPI is the subset of the EventBridge client in use.
type EventBridgeAPI interface {
	PutEvents(context.Context, *eventbridge.PutEventsInput, ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}
