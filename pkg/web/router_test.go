// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/mock/gomock"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/authentication"
	groups_api "github.com/canonical/identity-db-sync/pkg/groups"
	"github.com/canonical/identity-db-sync/pkg/pipeline"
)

const apiToken = "secret"

func newTestRouter(t *testing.T, runner pipeline.RunnerInterface, verifier authentication.TokenVerifierInterface) http.Handler {
	registry, err := groups_api.NewRegistry(types.Group{ID: "g-dba", Name: "dba", Role: "dba"})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	return NewRouter(
		apiToken,
		authentication.NewConfig("https://issuer.example.com", "", "svc"),
		verifier,
		runner,
		registry,
		nil,
		nil,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test"),
		logging.NewNoopLogger(),
	)
}

func serve(h http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterStatusIsPublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestRouter(t, pipeline.NewMockRunnerInterface(ctrl), nil)

	for _, path := range []string{"/api/v0/status", "/api/v0/status/ready", "/api/v0/metrics"} {
		if w := serve(h, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, w.Code)
		}
	}
}

func TestRouterStagesRequireToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := pipeline.NewMockRunnerInterface(ctrl)
	runner.EXPECT().Stages().Return([]string{pipeline.StageReconciler}).Times(1)

	h := newTestRouter(t, runner, nil)

	tests := []struct {
		name     string
		bearer   string
		expected int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "nope", http.StatusUnauthorized},
		{"valid token", apiToken, http.StatusOK},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if w := serve(h, http.MethodGet, "/api/v0/stages/", test.bearer); w.Code != test.expected {
				t.Fatalf("expected status %d, got %d", test.expected, w.Code)
			}
		})
	}
}

func TestRouterGroupsWithoutJWT(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	if w := serve(h, http.MethodGet, "/api/v0/groups", ""); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w := serve(h, http.MethodGet, "/api/v0/groups/g-unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestRouterGroupsWithJWT(t *testing.T) {
	tests := []struct {
		name     string
		bearer   string
		setup    func(*authentication.MockTokenVerifierInterface)
		expected int
	}{
		{
			name:     "missing token",
			setup:    func(v *authentication.MockTokenVerifierInterface) {},
			expected: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			bearer: "bad",
			setup: func(v *authentication.MockTokenVerifierInterface) {
				v.EXPECT().VerifyToken(gomock.Any(), "bad").Return(nil, errors.New("signature mismatch"))
			},
			expected: http.StatusUnauthorized,
		},
		{
			name:   "subject not allowed",
			bearer: "other",
			setup: func(v *authentication.MockTokenVerifierInterface) {
				v.EXPECT().VerifyToken(gomock.Any(), "other").Return(&oidc.IDToken{Subject: "intruder"}, nil)
			},
			expected: http.StatusUnauthorized,
		},
		{
			name:   "allowed subject",
			bearer: "good",
			setup: func(v *authentication.MockTokenVerifierInterface) {
				v.EXPECT().VerifyToken(gomock.Any(), "good").Return(&oidc.IDToken{Subject: "svc"}, nil)
			},
			expected: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			verifier := authentication.NewMockTokenVerifierInterface(ctrl)
			test.setup(verifier)

			h := newTestRouter(t, nil, verifier)

			if w := serve(h, http.MethodGet, "/api/v0/groups", test.bearer); w.Code != test.expected {
				t.Fatalf("expected status %d, got %d", test.expected, w.Code)
			}
		})
	}
}
