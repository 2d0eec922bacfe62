// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dbadmin

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

type tokenFunc func(ctx context.Context) (string, error)

func iamToken(cfg *Config, creds aws.CredentialsProvider) tokenFunc {
	endpoint := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.port()))

	return func(ctx context.Context) (string, error) {
		token, err := auth.BuildAuthToken(ctx, endpoint, cfg.Region, cfg.User, creds)
		if err != nil {
			return "", fmt.Errorf("failed to build RDS auth token: %w", err)
		}
		return token, nil
	}
}

// Open returns a connection pool to the target database. Each new connection
// gets a fresh IAM token unless a static password is configured.
func Open(cfg *Config, creds aws.CredentialsProvider) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var token tokenFunc
	if cfg.IAMAuth() {
		if creds == nil {
			return nil, fmt.Errorf("IAM database authentication requires AWS credentials")
		}
		token = iamToken(cfg, creds)
	}

	switch cfg.Engine {
	case EngineMySQL:
		return openMySQL(cfg, token)
	case EnginePostgres:
		return openPostgres(cfg, token)
	default:
		return nil, fmt.Errorf("database engine %q is not supported", cfg.Engine)
	}
}

func openMySQL(cfg *Config, token tokenFunc) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.port()))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.ConnectTimeout
	mc.Passwd = cfg.Password

	if cfg.TLS {
		mc.TLSConfig = "true"
	}

	if token != nil {
		// IAM tokens are sent in clear text over TLS
		mc.AllowCleartextPasswords = true

		err := mc.Apply(mysql.BeforeConnect(func(ctx context.Context, c *mysql.Config) error {
			t, err := token(ctx)
			if err != nil {
				return err
			}
			c.Passwd = t
			return nil
		}))
		if err != nil {
			return nil, err
		}
	}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mysql connector: %w", err)
	}

	return sql.OpenDB(connector), nil
}

func openPostgres(cfg *Config, token tokenFunc) (*sql.DB, error) {
	sslmode := "prefer"
	if cfg.TLS {
		sslmode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s sslmode=%s", cfg.Host, cfg.port(), cfg.User, sslmode)
	if cfg.Name != "" {
		dsn += " dbname=" + cfg.Name
	}
	if cfg.ConnectTimeout > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", int(cfg.ConnectTimeout.Seconds()))
	}

	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cc.Password = cfg.Password

	opts := make([]stdlib.OptionOpenDB, 0, 1)
	if token != nil {
		opts = append(opts, stdlib.OptionBeforeConnect(func(ctx context.Context, c *pgx.ConnConfig) error {
			t, err := token(ctx)
			if err != nil {
				return err
			}
			c.Password = t
			return nil
		}))
	}

	return stdlib.OpenDB(*cc, opts...), nil
}
