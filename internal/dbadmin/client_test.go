// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dbadmin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

func setupTestPostgres(t *testing.T) *Config {
	t.Helper()
	ctx := context.Background()

	var container *postgres.PostgresContainer
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping: Docker not available (%v)", r)
			}
		}()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Skipf("Skipping: failed to start PostgreSQL container: %v", err)
		}
	}()

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return &Config{
		Engine:         EnginePostgres,
		Host:           host,
		Port:           port.Int(),
		User:           "testuser",
		Name:           "testdb",
		Password:       "testpass",
		ConnectTimeout: 5 * time.Second,
	}
}

func TestClientPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := setupTestPostgres(t)
	ctx := context.Background()

	db, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	c, err := NewClient(db, cfg.Engine, cfg.IAMAuth(), tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE ROLE "dba"`); err != nil {
		t.Fatalf("Failed to create role: %v", err)
	}

	if ok, err := c.UserExists(ctx, "alice"); err != nil || ok {
		t.Fatalf("expected alice to be absent, got %v, %v", ok, err)
	}

	for i := 0; i < 2; i++ {
		if err := c.CreateUser(ctx, "alice"); err != nil {
			t.Fatalf("create attempt %d failed: %v", i, err)
		}
	}

	if ok, err := c.UserExists(ctx, "alice"); err != nil || !ok {
		t.Fatalf("expected alice to exist, got %v, %v", ok, err)
	}

	for i := 0; i < 2; i++ {
		if err := c.GrantRole(ctx, "alice", "dba"); err != nil {
			t.Fatalf("grant attempt %d failed: %v", i, err)
		}
	}

	if err := c.GrantRole(ctx, "bob", "dba"); err == nil {
		t.Fatal("expected granting to a missing user to fail")
	}

	for i := 0; i < 2; i++ {
		if err := c.DropUser(ctx, "alice"); err != nil {
			t.Fatalf("drop attempt %d failed: %v", i, err)
		}
	}

	if ok, err := c.UserExists(ctx, "alice"); err != nil || ok {
		t.Fatalf("expected alice to be dropped, got %v, %v", ok, err)
	}

	if err := c.CreateUser(ctx, `alice"; DROP ROLE dba; --`); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}
