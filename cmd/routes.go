// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/canonical/identity-db-sync/pkg/router"
)

type routesOutput struct {
	Topology *router.Topology `yaml:"topology" json:"topology"`
	Rules    []router.Rule    `yaml:"rules" json:"rules"`
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the routing topology and the matching event bus rules",
	Long: `Print the routing topology built from ROUTES_FILE or the ROUTING_STRATEGY and
*_BUS_ARN variables, together with the EventBridge event patterns that
implement it for the relevant groups.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		return printRoutes(cmd.Context(), cmd.OutOrStdout(), format)
	},
}

func init() {
	routesCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml|json)")

	rootCmd.AddCommand(routesCmd)
}

func printRoutes(ctx context.Context, w io.Writer, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if w == nil {
		w = os.Stdout
	}

	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a := newApp(specs)
	defer a.Close()

	t, err := a.topology()
	if err != nil {
		return err
	}
	registry, err := a.groups(ctx)
	if err != nil {
		return err
	}

	out := routesOutput{Topology: t, Rules: t.EventPatterns(registry)}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
