// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "identity-db-sync",
	Short: "Keep database users in sync with identity directory groups",
	Long: `identity-db-sync provisions and deprovisions database users from the
group membership events of an AWS IAM Identity Center identity store.

Configuration is sourced from the environment, see the readme for the full list.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
