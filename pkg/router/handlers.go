// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/identity-db-sync/internal/http/types"
	"github.com/canonical/identity-db-sync/internal/logging"
)

type API struct {
	service  ServiceInterface
	registry RegistryInterface

	logger logging.LoggerInterface
}

type routesResponse struct {
	Topology *Topology `json:"topology"`
	Rules    []Rule    `json:"rules"`
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/routes", a.handleGetRoutes)
}

func (a *API) handleGetRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t := a.service.Topology()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(
		types.Response{
			Data:    routesResponse{Topology: t, Rules: t.EventPatterns(a.registry)},
			Message: "Routing topology",
			Status:  http.StatusOK,
		},
	)
}

func NewAPI(service ServiceInterface, registry RegistryInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service
	a.registry = registry
	a.logger = logger

	return a
}
