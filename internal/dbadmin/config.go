// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dbadmin

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Engine string

const (
	EngineMySQL    Engine = "mysql"
	EnginePostgres Engine = "postgres"
)

// ParseEngine accepts RDS engine names such as "aurora-mysql" or "aurora-postgresql".
func ParseEngine(s string) (Engine, error) {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "mysql"), strings.Contains(s, "mariadb"):
		return EngineMySQL, nil
	case strings.Contains(s, "postgres"):
		return EnginePostgres, nil
	default:
		return "", fmt.Errorf("database engine %q is not supported", s)
	}
}

func (e Engine) DefaultPort() int {
	if e == EnginePostgres {
		return 5432
	}
	return 3306
}

// Config addresses the target database. Without a password every new
// connection authenticates with an RDS IAM token.
type Config struct {
	Engine Engine `validate:"required,oneof=mysql postgres"`
	Host   string `validate:"required,hostname_rfc1123|ip"`
	Port   int    `validate:"omitempty,min=1,max=65535"`
	User   string `validate:"required"`
	Name   string
	Region string `validate:"required_without=Password"`
	TLS    bool

	Password string

	ConnectTimeout time.Duration
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}
	return nil
}

func (c *Config) IAMAuth() bool {
	return c.Password == ""
}

func (c *Config) port() int {
	if c.Port == 0 {
		return c.Engine.DefaultPort()
	}
	return c.Port
}
