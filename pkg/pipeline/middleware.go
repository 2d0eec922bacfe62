// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/canonical/identity-db-sync/internal/http/types"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

// AuthMiddleware guards event ingestion with a static bearer token shared
// with the EventBridge API destination connection.
type AuthMiddleware struct {
	token []byte

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (a *AuthMiddleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := a.tracer.Start(r.Context(), "pipeline.AuthMiddleware.AuthMiddleware")
		defer span.End()

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), a.token) != 1 {
			a.logger.Debugf("rejecting request to %s: bad or missing token", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(types.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewAuthMiddleware(token string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *AuthMiddleware {
	a := new(AuthMiddleware)

	a.token = []byte(token)

	a.tracer = tracer
	a.logger = logger

	return a
}
