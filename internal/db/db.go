// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

var _ DBClientInterface = (*DBClient)(nil)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
}

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a squirrel builder bound to the pool with postgres placeholders.
func (c *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		RunWith(c.db)
}

func (c *DBClient) DB() *sql.DB {
	return c.db
}

func (c *DBClient) Ping(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "db.DBClient.Ping")
	defer span.End()

	err := c.pool.Ping(ctx)

	available := 1.0
	if err != nil {
		available = 0
	}
	if merr := c.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, available); merr != nil {
		c.logger.Debugf("failed to set dependency availability: %v", merr)
	}

	return err
}

func (c *DBClient) Close() {
	if c.db != nil {
		c.db.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}

func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Fatalf("DSN validation failed, shutting down, err: %v", err)
		return nil, fmt.Errorf("invalid DSN: %v", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	if cfg.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	c := new(DBClient)
	c.pool = pool
	c.db = stdlib.OpenDBFromPool(pool)

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c, nil
}
