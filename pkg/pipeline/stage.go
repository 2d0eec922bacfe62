// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"

	"github.com/canonical/identity-db-sync/internal/types"
)

const (
	StageRouter     = "router"
	StageRelay      = "relay"
	StageReconciler = "reconciler"
	StageFailures   = "failures"
)

// Handler processes one validated event and returns its outcome.
type Handler func(context.Context, *types.DirectoryEvent) (string, error)

// Stage is one independently triggered step of the pipeline.
type Stage struct {
	Name    string
	Handler Handler
}

// RouterStage forwards events leaving channel, an empty channel meaning the
// topology entry.
func RouterStage(name, channel string, router RouterInterface) Stage {
	return Stage{
		Name: name,
		Handler: func(ctx context.Context, e *types.DirectoryEvent) (string, error) {
			n, err := router.Route(ctx, channel, e)
			if err != nil {
				return "", err
			}
			if n == 0 {
				return "filtered", nil
			}
			return "forwarded", nil
		},
	}
}

func ReconcilerStage(r ReconcilerInterface) Stage {
	return Stage{
		Name: StageReconciler,
		Handler: func(ctx context.Context, e *types.DirectoryEvent) (string, error) {
			outcome, err := r.Reconcile(ctx, e)
			return string(outcome), err
		},
	}
}
