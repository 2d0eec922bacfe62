// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dbadmin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
)

// Client administers database users. Every operation is idempotent.
type Client struct {
	db      *sql.DB
	dialect dialect
	engine  Engine

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) exec(ctx context.Context, op, stmt string) error {
	_, err := c.db.ExecContext(ctx, stmt)
	if err == nil {
		return nil
	}
	if c.dialect.alreadyExists(err) {
		c.logger.Debugf("%s: already applied", op)
		return nil
	}
	return fmt.Errorf("failed to execute %s: %w", op, err)
}

func (c *Client) CreateUser(ctx context.Context, username string) error {
	ctx, span := c.tracer.Start(ctx, "dbadmin.Client.CreateUser")
	defer span.End()

	if err := ValidateIdentifier(username); err != nil {
		return err
	}

	for _, stmt := range c.dialect.createUser(username) {
		if err := c.exec(ctx, "create user", stmt); err != nil {
			return err
		}
	}

	c.logger.Infof("created database user %s", username)
	return nil
}

func (c *Client) GrantRole(ctx context.Context, username, role string) error {
	ctx, span := c.tracer.Start(ctx, "dbadmin.Client.GrantRole")
	defer span.End()

	if err := ValidateIdentifier(username); err != nil {
		return err
	}
	if err := ValidateIdentifier(role); err != nil {
		return err
	}

	if err := c.exec(ctx, "grant role", c.dialect.grantRole(username, role)); err != nil {
		return err
	}

	c.logger.Infof("granted %s to %s", role, username)
	return nil
}

func (c *Client) DropUser(ctx context.Context, username string) error {
	ctx, span := c.tracer.Start(ctx, "dbadmin.Client.DropUser")
	defer span.End()

	if err := ValidateIdentifier(username); err != nil {
		return err
	}

	if err := c.exec(ctx, "drop user", c.dialect.dropUser(username)); err != nil {
		return err
	}

	c.logger.Infof("dropped database user %s", username)
	return nil
}

func (c *Client) UserExists(ctx context.Context, username string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "dbadmin.Client.UserExists")
	defer span.End()

	if err := ValidateIdentifier(username); err != nil {
		return false, err
	}

	var n int
	if err := c.dialect.userExists(username).RunWith(c.db).QueryRowContext(ctx).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up user %s: %w", username, err)
	}

	return n > 0, nil
}

func (c *Client) Ping(ctx context.Context) error {
	err := c.db.PingContext(ctx)

	v := 1.0
	if err != nil {
		v = 0
	}
	c.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, v)

	return err
}

func (c *Client) Close() error {
	return c.db.Close()
}

func NewClient(db *sql.DB, engine Engine, iam bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	d, err := newDialect(engine, iam)
	if err != nil {
		return nil, err
	}

	c := new(Client)

	c.db = db
	c.dialect = d
	c.engine = engine

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c, nil
}
