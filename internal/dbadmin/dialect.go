// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dbadmin

import (
	"errors"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/canonical/identity-db-sync/internal/types"
)

var ErrInvalidIdentifier = types.ErrInvalidIdentifier

// identifiers end up inside DDL, which cannot take bind parameters
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]{1,63}$`)

func ValidateIdentifier(s string) error {
	if !identifierPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return nil
}

type dialect interface {
	createUser(username string) []string
	grantRole(username, role string) string
	dropUser(username string) string
	userExists(username string) sq.SelectBuilder
	alreadyExists(error) bool
}

type mysqlDialect struct{}

func mysqlAccount(username string) string {
	return fmt.Sprintf("'%s'@'%%'", username)
}

func (mysqlDialect) createUser(username string) []string {
	return []string{
		fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED WITH AWSAuthenticationPlugin AS 'RDS'", mysqlAccount(username)),
	}
}

func (mysqlDialect) grantRole(username, role string) string {
	return fmt.Sprintf("GRANT '%s' TO %s", role, mysqlAccount(username))
}

func (mysqlDialect) dropUser(username string) string {
	return fmt.Sprintf("DROP USER IF EXISTS %s", mysqlAccount(username))
}

func (mysqlDialect) userExists(username string) sq.SelectBuilder {
	return sq.Select("COUNT(*)").From("mysql.user").Where(sq.Eq{"user": username}).PlaceholderFormat(sq.Question)
}

// ER_CANNOT_USER
func (mysqlDialect) alreadyExists(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1396
}

type postgresDialect struct {
	iam bool
}

func pgIdent(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func (d postgresDialect) createUser(username string) []string {
	stmts := []string{fmt.Sprintf("CREATE ROLE %s WITH LOGIN", pgIdent(username))}
	if d.iam {
		stmts = append(stmts, fmt.Sprintf("GRANT rds_iam TO %s", pgIdent(username)))
	}
	return stmts
}

func (postgresDialect) grantRole(username, role string) string {
	return fmt.Sprintf("GRANT %s TO %s", pgIdent(role), pgIdent(username))
}

func (postgresDialect) dropUser(username string) string {
	return fmt.Sprintf("DROP ROLE IF EXISTS %s", pgIdent(username))
}

func (postgresDialect) userExists(username string) sq.SelectBuilder {
	return sq.Select("COUNT(*)").From("pg_catalog.pg_roles").Where(sq.Eq{"rolname": username}).PlaceholderFormat(sq.Dollar)
}

// duplicate_object
func (postgresDialect) alreadyExists(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "42710"
}

func newDialect(engine Engine, iam bool) (dialect, error) {
	switch engine {
	case EngineMySQL:
		return mysqlDialect{}, nil
	case EnginePostgres:
		return postgresDialect{iam: iam}, nil
	default:
		return nil, fmt.Errorf("database engine %q is not supported", engine)
	}
}
