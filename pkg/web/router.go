// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/pkg/authentication"
	groups_api "github.com/canonical/identity-db-sync/pkg/groups"
	"github.com/canonical/identity-db-sync/pkg/metrics"
	"github.com/canonical/identity-db-sync/pkg/pipeline"
	router_api "github.com/canonical/identity-db-sync/pkg/router"
	"github.com/canonical/identity-db-sync/pkg/status"
)

func NewRouter(
	token string,
	authnConfig *authentication.Config,
	jwtVerifier authentication.TokenVerifierInterface,
	runner pipeline.RunnerInterface,
	registry *groups_api.Registry,
	routes router_api.ServiceInterface,
	checkers map[string]status.CheckerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		middleware.RequestLogger(logging.NewLogFormatter(logger)), // LogFormatter will only work if logger is set to DEBUG level
	)

	router.Use(middlewares...)

	var authMiddleware *pipeline.AuthMiddleware = nil
	if token != "" {
		authMiddleware = pipeline.NewAuthMiddleware(token, tracer, logger)
	}

	// read-only views are protected with JWT auth when enabled
	admin := router.With()
	if jwtVerifier != nil {
		admin = router.With(authentication.NewMiddleware(authnConfig, jwtVerifier, tracer, monitor, logger).Authenticate())
	}

	if runner != nil {
		pipeline.NewAPI(runner, authMiddleware, tracer, monitor, logger).RegisterEndpoints(router)
	}
	if registry != nil {
		groups_api.NewAPI(registry, tracer, monitor, logger).RegisterEndpoints(admin)
	}
	if routes != nil && registry != nil {
		router_api.NewAPI(routes, registry, logger).RegisterEndpoints(admin)
	}

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(checkers, tracer, monitor, logger).RegisterEndpoints(router)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
