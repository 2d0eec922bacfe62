// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"runtime/debug"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/identity-db-sync/internal/http/types"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

const checkTimeout = 3 * time.Second

type BuildInfo struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	Name       string `json:"name"`
}

type Status struct {
	Status    string     `json:"status"`
	BuildInfo *BuildInfo `json:"build_info"`
}

type Dependency struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type API struct {
	checkers map[string]CheckerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/status/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	types.WriteJSON(w, types.Response{
		Data:    Status{Status: "ok", BuildInfo: buildInfo()},
		Message: "Service is alive",
		Status:  http.StatusOK,
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	names := make([]string, 0, len(a.checkers))
	for name := range a.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]Dependency, 0, len(names))
	status := http.StatusOK

	for _, name := range names {
		d := Dependency{Name: name, Available: true}

		if err := a.checkers[name].Ping(ctx); err != nil {
			a.logger.Warnf("dependency %s is not available: %v", name, err)
			d.Available = false
			d.Error = err.Error()
			status = http.StatusServiceUnavailable
		}

		deps = append(deps, d)
	}

	message := "Service is ready"
	if status != http.StatusOK {
		message = "Service is not ready"
	}

	types.WriteJSON(w, types.Response{
		Data:    deps,
		Message: message,
		Status:  status,
		Meta:    &types.Pagination{Size: len(deps)},
	})
}

func buildInfo() *BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	b := &BuildInfo{Name: info.Main.Path, Version: info.Main.Version}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			b.CommitHash = s.Value
		}
	}

	return b
}

func NewAPI(checkers map[string]CheckerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.checkers = checkers

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
