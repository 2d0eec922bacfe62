// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
	"github.com/canonical/identity-db-sync/pkg/failures"
	"github.com/canonical/identity-db-sync/pkg/reconciler"
)

const (
	DefaultTimeout = 10 * time.Second

	OutcomeRejected = "rejected"
	OutcomeRetry    = "retry"
)

var ErrUnknownStage = errors.New("unknown stage")

// Result describes how an invocation was handled.
type Result struct {
	Stage   string `json:"stage"`
	EventID string `json:"event_id,omitempty"`
	Kind    string `json:"event_type,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Outcome string `json:"outcome"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Invalid reports whether the input was rejected as malformed.
func (r *Result) Invalid() bool {
	return r.Code == reconciler.ErrCodeInvalidEvent
}

var _ RunnerInterface = (*Runner)(nil)

type Runner struct {
	stages   map[string]Stage
	failures FailuresInterface
	timeout  time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Runner) Stages() []string {
	names := make([]string, 0, len(r.stages))
	for n := range r.stages {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Handle runs one invocation of a stage. The returned error is non-nil only
// when the transport should redeliver the event; every other failure is
// reported to the failure sink and swallowed.
func (r *Runner) Handle(ctx context.Context, name string, raw []byte) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.Runner.Handle")
	defer span.End()

	stage, ok := r.stages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, name)
	}

	res := &Result{Stage: name, RequestID: RequestID(ctx)}

	e, err := types.ParseEnvelope(raw)
	if err != nil {
		res.Outcome = OutcomeRejected
		res.Code = reconciler.ErrCodeInvalidEvent
		res.Reason = err.Error()

		r.logger.Warnf("%s: rejecting envelope: %v", name, err)
		r.report(ctx, res, raw)
		r.count(res)
		return res, nil
	}

	res.EventID = e.EventID
	res.Kind = string(e.Kind)
	res.UserID = e.UserID

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outcome, err := stage.Handler(ctx, e)
	if err == nil {
		res.Outcome = outcome
		r.count(res)
		return res, nil
	}

	code, retryable := classify(err)
	res.Code = code
	res.Reason = err.Error()

	if !retryable {
		res.Outcome = OutcomeRejected
		r.logger.Errorf("%s: %s failed permanently: %v", name, e, err)
		r.report(ctx, res, raw)
		r.count(res)
		return res, nil
	}

	res.Outcome = OutcomeRetry
	r.logger.Errorf("%s: %s failed, requesting redelivery: %v", name, e, err)
	if code == reconciler.ErrCodePartialCommit {
		r.report(ctx, res, raw)
	}
	r.count(res)
	return res, err
}

// HandleFailureRecord forwards a Lambda on-failure destination record to the
// failure sink. It never asks for redelivery.
func (r *Runner) HandleFailureRecord(ctx context.Context, raw json.RawMessage) error {
	ctx, span := r.tracer.Start(ctx, "pipeline.Runner.HandleFailureRecord")
	defer span.End()

	res := &Result{Stage: StageFailures, Outcome: "notified"}

	f, err := r.failures.HandleDestinationRecord(ctx, raw)
	if err != nil {
		res.Outcome = OutcomeRejected
	}
	if f != nil {
		res.Kind = f.Kind
	}

	r.count(res)
	return nil
}

func (r *Runner) report(ctx context.Context, res *Result, raw []byte) {
	r.failures.Report(ctx, failures.Failure{
		Stage:   res.Stage,
		Kind:    res.Kind,
		UserID:  res.UserID,
		Reason:  res.Reason,
		Code:    res.Code,
		Payload: json.RawMessage(raw),
	})
}

func (r *Runner) count(res *Result) {
	kind := res.Kind
	if kind == "" {
		kind = "unknown"
	}

	err := r.monitor.IncrementEventCount(map[string]string{
		"stage":   res.Stage,
		"kind":    kind,
		"outcome": res.Outcome,
	})
	if err != nil {
		r.logger.Debugf("failed to count event: %v", err)
	}
}

// classify maps an error to its code and whether redelivery can fix it.
func classify(err error) (string, bool) {
	if errors.Is(err, enrichment.ErrIdentityNotFound) {
		return reconciler.ErrCodeUnresolvableIdentity, false
	}

	code := reconciler.Code(err)
	return code, reconciler.Retryable(err)
}

type Option func(*Runner)

func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRunner(
	stages []Stage,
	failures FailuresInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
	opts ...Option,
) *Runner {
	r := new(Runner)

	r.stages = make(map[string]Stage, len(stages))
	for _, s := range stages {
		r.stages[s.Name] = s
	}
	r.failures = failures
	r.timeout = DefaultTimeout

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	for _, o := range opts {
		o(r)
	}

	return r
}
