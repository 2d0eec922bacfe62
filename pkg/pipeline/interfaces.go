// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"encoding/json"

	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/failures"
	"github.com/canonical/identity-db-sync/pkg/reconciler"
)

type RunnerInterface interface {
	Handle(context.Context, string, []byte) (*Result, error)
	HandleFailureRecord(context.Context, json.RawMessage) error
	Stages() []string
}

type RouterInterface interface {
	Route(context.Context, string, *types.DirectoryEvent) (int, error)
}

type ReconcilerInterface interface {
	Reconcile(context.Context, *types.DirectoryEvent) (reconciler.Outcome, error)
}

type FailuresInterface interface {
	Report(context.Context, failures.Failure)
	HandleDestinationRecord(context.Context, json.RawMessage) (*failures.Failure, error)
}
