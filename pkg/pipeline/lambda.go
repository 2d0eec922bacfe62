// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// LambdaHandler adapts a stage to the Lambda runtime. A returned error makes
// the asynchronous invocation retry and, once retries are exhausted, go to
// the on-failure destination.
func LambdaHandler(r RunnerInterface, stage string) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, raw json.RawMessage) error {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			ctx = withRequestID(ctx, lc.AwsRequestID)
		}

		_, err := r.Handle(ctx, stage, raw)
		return err
	}
}

// FailureRecordHandler consumes Lambda on-failure destination records.
func FailureRecordHandler(r RunnerInterface) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, raw json.RawMessage) error {
		return r.HandleFailureRecord(ctx, raw)
	}
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the Lambda request ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
