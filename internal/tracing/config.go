// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/identity-db-sync/internal/logging"
)

type Config struct {
	OtelGRPCEndpoint string
	OtelHTTPEndpoint string
	Logger           logging.LoggerInterface
	Enabled          bool
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.OtelGRPCEndpoint = otelGRPCEndpoint
	c.OtelHTTPEndpoint = otelHTTPEndpoint
	c.Logger = logger
	c.Enabled = enabled

	return c
}

func NewNoopConfig() *Config {
	return NewConfig(false, "", "", logging.NewNoopLogger())
}
