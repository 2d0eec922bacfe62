// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/canonical/identity-db-sync/pkg/pipeline"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run one pipeline stage as an AWS Lambda function",
	Long: `Run one pipeline stage inside the AWS Lambda runtime.

The router and relay stages are triggered by event bus rules, the reconciler
by the target bus rule and the failures stage by the on-failure destination
of the other functions.

Example:
  identity-db-sync lambda --stage reconciler`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stage, _ := cmd.Flags().GetString("stage")
		return runLambda(stage)
	},
}

func init() {
	lambdaCmd.Flags().String("stage", "", "Stage to run (router, relay, reconciler, failures)")
	_ = lambdaCmd.MarkFlagRequired("stage")

	rootCmd.AddCommand(lambdaCmd)
}

func runLambda(stage string) error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a := newApp(specs)
	defer a.Close()

	runner, err := a.runner(context.Background(), stage)
	if err != nil {
		return fmt.Errorf("failed to build stage %s: %v", stage, err)
	}

	a.logger.Infof("starting lambda handler for stage %s", stage)

	if stage == pipeline.StageFailures {
		lambda.Start(pipeline.FailureRecordHandler(runner))
		return nil
	}

	lambda.Start(pipeline.LambdaHandler(runner, stage))
	return nil
}
