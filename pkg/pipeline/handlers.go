// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/identity-db-sync/internal/http/types"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

const maxBodySize = 256 << 10

type API struct {
	runner     RunnerInterface
	middleware *AuthMiddleware

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	r := chi.NewRouter()
	if a.middleware != nil {
		r.Use(a.middleware.AuthMiddleware)
	}

	r.Get("/", a.handleListStages)
	r.Post("/failures/records", a.handleFailureRecord)
	r.Post("/{stage}/events", a.handleEvent)

	mux.Mount("/api/v0/stages", r)
}

func (a *API) handleListStages(w http.ResponseWriter, r *http.Request) {
	stages := a.runner.Stages()

	types.WriteJSON(w, types.Response{
		Data:    stages,
		Message: "List of stages",
		Status:  http.StatusOK,
		Meta:    &types.Pagination{Size: len(stages)},
	})
}

func (a *API) handleEvent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		a.logger.Errorf("failed to read request body: %v", err)
		types.WriteJSON(w, types.Response{Status: http.StatusBadRequest, Message: "Failed to read request body"})
		return
	}

	res, err := a.runner.Handle(r.Context(), chi.URLParam(r, "stage"), body)

	switch {
	case errors.Is(err, ErrUnknownStage):
		types.WriteJSON(w, types.Response{Status: http.StatusNotFound, Message: err.Error()})
	case err != nil:
		types.WriteJSON(w, types.Response{Data: res, Status: http.StatusInternalServerError, Message: "Event processing failed, retry"})
	case res.Invalid():
		types.WriteJSON(w, types.Response{Data: res, Status: http.StatusBadRequest, Message: "Invalid event"})
	default:
		types.WriteJSON(w, types.Response{Data: res, Status: http.StatusOK, Message: "Event handled"})
	}
}

func (a *API) handleFailureRecord(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		a.logger.Errorf("failed to read request body: %v", err)
		types.WriteJSON(w, types.Response{Status: http.StatusBadRequest, Message: "Failed to read request body"})
		return
	}

	if err := a.runner.HandleFailureRecord(r.Context(), json.RawMessage(body)); err != nil {
		types.WriteJSON(w, types.Response{Status: http.StatusInternalServerError, Message: err.Error()})
		return
	}

	types.WriteJSON(w, types.Response{Status: http.StatusOK, Message: "Failure record handled"})
}

func NewAPI(
	runner RunnerInterface,
	middleware *AuthMiddleware,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.runner = runner
	a.middleware = middleware

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
