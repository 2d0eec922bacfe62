// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"time"

	"github.com/canonical/identity-db-sync/internal/db"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

const DefaultTombstoneTTL = 30 * 24 * time.Hour

var _ StorageInterface = (*Storage)(nil)

// Storage is the Postgres backed identity cache.
type Storage struct {
	db db.DBClientInterface

	tombstoneTTL time.Duration

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tombstoneTTL time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c
	s.tombstoneTTL = tombstoneTTL
	if s.tombstoneTTL <= 0 {
		s.tombstoneTTL = DefaultTombstoneTTL
	}

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}
