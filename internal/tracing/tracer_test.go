// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
)

func TestNoopTracerStart(t *testing.T) {
	tracer := NewNoopTracer()

	ctx, span := tracer.Start(context.TODO(), "tracing.Test")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}
	if span.SpanContext().IsValid() {
		t.Fatal("expected noop span to carry an invalid span context")
	}
}

func TestMiddlewareOpenTelemetry(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	h := NewMiddleware(monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()).OpenTelemetry(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

	if !called {
		t.Fatal("expected wrapped handler to be called")
	}
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d not %d", http.StatusNoContent, w.Code)
	}
}
