// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile database users against the directory once",
	Long: `Compare the members of the relevant directory groups with the users managed
in the identity cache and repair any drift through the reconciler.

Missing users are provisioned, users no longer in any relevant group are
deprovisioned. A JSON report is printed on completion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a := newApp(specs)
	defer a.Close()

	sweeper, err := a.sweeper(ctx)
	if err != nil {
		return fmt.Errorf("failed to build sweep: %v", err)
	}

	report, err := sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d users could not be reconciled", report.Failed)
	}

	return nil
}
