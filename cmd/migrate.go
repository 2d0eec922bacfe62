// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kelseyhightower/envconfig"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/identity-db-sync/internal/config"
	"github.com/canonical/identity-db-sync/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply the identity cache schema migrations",
	Long:      `Manage the schema of the postgres identity cache backend (CACHE_BACKEND=postgres).`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")
		return migrate(cmd.Context(), dsn, args[0])
	},
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string, defaults to DSN")

	rootCmd.AddCommand(migrateCmd)
}

func migrate(ctx context.Context, dsn, command string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if dsn == "" {
		specs := new(config.EnvSpec)
		// best-effort env loading, flags take precedence
		_ = envconfig.Process("", specs)
		dsn = specs.DSN
	}
	if dsn == "" {
		return fmt.Errorf("migrate requires --dsn or DSN")
	}

	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %v", err)
	}

	sqlDB := stdlib.OpenDB(*cfg)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.EmbedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, sqlDB, ".")
	case "down":
		return goose.DownContext(ctx, sqlDB, ".")
	default:
		return goose.StatusContext(ctx, sqlDB, ".")
	}
}
