// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

// NewJWTAuthenticator builds a verifier for the configured issuer, through the
// manual JWKS URL when set or OIDC discovery otherwise.
func NewJWTAuthenticator(
	ctx context.Context,
	cfg *Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if cfg == nil || cfg.Issuer == "" {
		return nil, fmt.Errorf("AUTHENTICATION_ENABLED is true but AUTHENTICATION_ISSUER is not configured")
	}

	if cfg.JWKSURL != "" {
		logger.Infof("Using manual JWKS URL: %s", cfg.JWKSURL)
		return NewJWTVerifierDirect(NewKeySetVerifier(ctx, cfg.Issuer, cfg.JWKSURL), tracer, monitor, logger), nil
	}

	logger.Infof("Using OIDC discovery for issuer: %s", cfg.Issuer)
	provider, err := NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return NewJWTVerifier(provider, tracer, monitor, logger), nil
}
