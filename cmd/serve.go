// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/identity-db-sync/pkg/authentication"
	"github.com/canonical/identity-db-sync/pkg/pipeline"
	"github.com/canonical/identity-db-sync/pkg/router"
	"github.com/canonical/identity-db-sync/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long: `Launch the web application exposing every pipeline stage as an HTTP endpoint.

Each stage is meant to be the target of an EventBridge API destination:
  POST /api/v0/stages/{stage}/events
  POST /api/v0/stages/failures/records

When SWEEP_SCHEDULE is set a reconciliation sweep also runs on that cron schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stages, _ := cmd.Flags().GetStringSlice("stages")
		return serve(stages)
	},
}

func init() {
	serveCmd.Flags().StringSlice("stages", []string{pipeline.StageRouter, pipeline.StageReconciler}, "Pipeline stages to serve (router, relay, reconciler)")

	rootCmd.AddCommand(serveCmd)
}

func serve(stages []string) error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a := newApp(specs)
	defer a.Close()

	logger := a.logger
	logger.Debugf("env vars: %v", specs)

	ctx := context.Background()

	runner, err := a.runner(ctx, stages...)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %v", err)
	}

	registry, err := a.groups(ctx)
	if err != nil {
		return err
	}

	var routes router.ServiceInterface
	if _, err := a.topology(); err == nil {
		s, err := a.routerService(ctx)
		if err != nil {
			return err
		}
		routes = s
	} else {
		logger.Warnf("routing topology not available: %v", err)
	}

	var authnConfig *authentication.Config
	var jwtVerifier authentication.TokenVerifierInterface
	if specs.AuthenticationEnabled {
		authnConfig = authentication.NewConfig(specs.AuthenticationIssuer, specs.AuthenticationJwksURL, specs.AuthenticationAllowedSubjects)
		jwtVerifier, err = authentication.NewJWTAuthenticator(ctx, authnConfig, a.tracer, a.monitor, logger)
		if err != nil {
			return fmt.Errorf("failed to setup JWT authenticator: %v", err)
		}
	} else {
		logger.Info("JWT authentication is disabled")
	}

	if specs.ApiToken == "" {
		logger.Warn("API_TOKEN is not set, stage endpoints are not authenticated")
	}

	var scheduler *cron.Cron
	if specs.SweepSchedule != "" {
		scheduler, err = scheduleSweep(ctx, a, specs.SweepSchedule)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	handler := web.NewRouter(
		specs.ApiToken,
		authnConfig,
		jwtVerifier,
		runner,
		registry,
		routes,
		a.checkers,
		a.tracer,
		a.monitor,
		logger,
	)
	logger.Infof("Starting server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      handler,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func scheduleSweep(ctx context.Context, a *app, schedule string) (*cron.Cron, error) {
	sweeper, err := a.sweeper(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build sweep: %v", err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err = c.AddFunc(schedule, func() {
		if _, err := sweeper.Run(ctx); err != nil {
			a.logger.Errorf("scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_SCHEDULE %q: %v", schedule, err)
	}

	a.logger.Infof("reconciliation sweep scheduled at %q", schedule)
	return c, nil
}
