// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/kelseyhightower/envconfig"

	"github.com/canonical/identity-db-sync/internal/awssdk"
	"github.com/canonical/identity-db-sync/internal/config"
	"github.com/canonical/identity-db-sync/internal/db"
	"github.com/canonical/identity-db-sync/internal/dbadmin"
	"github.com/canonical/identity-db-sync/internal/directory"
	"github.com/canonical/identity-db-sync/internal/dynamo"
	"github.com/canonical/identity-db-sync/internal/eventbus"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/monitoring/prometheus"
	"github.com/canonical/identity-db-sync/internal/notify"
	"github.com/canonical/identity-db-sync/internal/storage"
	"github.com/canonical/identity-db-sync/internal/sweep"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/enrichment"
	"github.com/canonical/identity-db-sync/pkg/failures"
	"github.com/canonical/identity-db-sync/pkg/groups"
	"github.com/canonical/identity-db-sync/pkg/pipeline"
	"github.com/canonical/identity-db-sync/pkg/reconciler"
	"github.com/canonical/identity-db-sync/pkg/router"
	"github.com/canonical/identity-db-sync/pkg/status"
)

const serviceName = "identity-db-sync"

// app lazily builds the components a command needs from the environment.
type app struct {
	specs *config.EnvSpec

	awsConfig *aws.Config
	dir       *directory.Client
	registry  *groups.Registry
	cache     storage.StorageInterface
	database  *dbadmin.Client
	routes    *router.Service
	checkers  map[string]status.CheckerInterface
	closers   []func()

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func loadSpecs() (*config.EnvSpec, error) {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %s", err)
	}
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	return specs, nil
}

func newApp(specs *config.EnvSpec) *app {
	a := new(app)

	a.specs = specs
	a.checkers = make(map[string]status.CheckerInterface)

	logger := logging.NewLogger(specs.LogLevel)
	a.logger = logger
	a.monitor = prometheus.NewMonitor(serviceName, logger)
	a.tracer = tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	return a
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.logger.Sync()
}

func (a *app) aws(ctx context.Context) (aws.Config, error) {
	if a.awsConfig != nil {
		return *a.awsConfig, nil
	}

	cfg, err := awssdk.LoadDefault(ctx, a.specs.AWSRegion)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %v", err)
	}
	a.awsConfig = &cfg

	return cfg, nil
}

func (a *app) directory(ctx context.Context) (*directory.Client, error) {
	if a.dir != nil {
		return a.dir, nil
	}
	if a.specs.IdentityStoreID == "" {
		return nil, fmt.Errorf("IDENTITY_STORE_ID is required")
	}

	cfg, err := a.aws(ctx)
	if err != nil {
		return nil, err
	}

	// the identity store may live in another account
	cfg = awssdk.AssumeRole(cfg, a.specs.DirectoryRoleARN)

	a.dir = directory.NewClient(
		identitystore.NewFromConfig(cfg),
		a.specs.IdentityStoreID,
		a.tracer, a.monitor, a.logger,
		directory.WithRateLimit(a.specs.DirectoryRate, 1),
	)

	return a.dir, nil
}

// groups resolves the relevant groups once; names need the directory.
func (a *app) groups(ctx context.Context) (*groups.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}

	explicit, err := types.ParseGroupIDs(a.specs.GroupIDs)
	if err != nil {
		return nil, err
	}
	names := types.ParseGroupNames(a.specs.GroupNames)

	var dir groups.DirectoryInterface
	if len(names) > 0 {
		d, err := a.directory(ctx)
		if err != nil {
			return nil, err
		}
		dir = d
	}

	registry, err := groups.NewResolver(dir, a.tracer, a.monitor, a.logger).Resolve(ctx, explicit, names)
	if err != nil {
		return nil, err
	}

	a.logger.Infof("relevant groups: %v", registry.Names())
	a.registry = registry

	return registry, nil
}

func (a *app) identityCache(ctx context.Context) (storage.StorageInterface, error) {
	if a.cache != nil {
		return a.cache, nil
	}

	switch a.specs.CacheBackend {
	case "postgres":
		dbClient, err := db.NewDBClient(
			db.Config{
				DSN:             a.specs.DSN,
				MaxConns:        a.specs.DBMaxConns,
				MinConns:        a.specs.DBMinConns,
				MaxConnLifetime: a.specs.DBMaxConnLifetime,
				MaxConnIdleTime: a.specs.DBMaxConnIdleTime,
				TracingEnabled:  a.specs.TracingEnabled,
			},
			a.tracer, a.monitor, a.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create database client: %v", err)
		}
		a.closers = append(a.closers, dbClient.Close)
		a.checkers["cache"] = dbClient
		a.cache = storage.NewStorage(dbClient, a.specs.TombstoneTTL, a.tracer, a.monitor, a.logger)
	case "memory":
		a.logger.Warn("using the in-memory identity cache, state is lost on restart")
		a.cache = storage.NewMemoryStorage(a.specs.TombstoneTTL)
	default:
		cfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		a.cache = dynamo.NewCache(dynamodb.NewFromConfig(cfg), a.specs.DDBTable, a.specs.TombstoneTTL, a.tracer, a.monitor, a.logger)
	}

	return a.cache, nil
}

func (a *app) dbAdmin(ctx context.Context) (*dbadmin.Client, error) {
	if a.database != nil {
		return a.database, nil
	}

	engine, err := dbadmin.ParseEngine(a.specs.RDSEngine)
	if err != nil {
		return nil, err
	}

	cfg := &dbadmin.Config{
		Engine:         engine,
		Host:           a.specs.RDSEndpoint,
		Port:           a.specs.RDSPort,
		User:           a.specs.RDSUser,
		Name:           a.specs.RDSName,
		Region:         a.specs.AWSRegion,
		TLS:            a.specs.RDSTLS,
		Password:       a.specs.DBPassword,
		ConnectTimeout: 5 * time.Second,
	}

	var creds aws.CredentialsProvider
	if cfg.IAMAuth() {
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		creds = awsCfg.Credentials
		if cfg.Region == "" {
			cfg.Region = awsCfg.Region
		}
	} else {
		a.logger.Warn("DB_PASSWORD is set, IAM database authentication is disabled")
	}

	conn, err := dbadmin.Open(cfg, creds)
	if err != nil {
		return nil, err
	}

	client, err := dbadmin.NewClient(conn, engine, cfg.IAMAuth(), a.tracer, a.monitor, a.logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	a.closers = append(a.closers, func() { client.Close() })
	a.checkers["database"] = client
	a.database = client

	return client, nil
}

func (a *app) topology() (*router.Topology, error) {
	if a.specs.RoutesFile != "" {
		return router.LoadTopologyFile(a.specs.RoutesFile)
	}

	var source, relay, target types.BusID
	var err error

	// events may arrive on the account default bus
	if a.specs.SourceBusARN != "" {
		if source, err = router.ParseBusARN(a.specs.SourceBusARN); err != nil {
			return nil, err
		}
	}
	if a.specs.RelayBusARN != "" {
		if relay, err = router.ParseBusARN(a.specs.RelayBusARN); err != nil {
			return nil, err
		}
	}
	if target, err = router.ParseBusARN(a.specs.TargetBusARN); err != nil {
		return nil, err
	}

	return router.DefaultTopology(router.Strategy(a.specs.RoutingStrategy), source, relay, target)
}

// routerEnricher resolves usernames from the directory only, the identity
// cache is owned by the reconciler.
func (a *app) routerEnricher(dir enrichment.DirectoryInterface, registry enrichment.RegistryInterface) *enrichment.Enricher {
	resolver := enrichment.NewResolver(dir, nil, a.tracer, a.monitor, a.logger)
	return enrichment.NewEnricher(resolver, registry, a.tracer, a.monitor, a.logger)
}

func (a *app) routerService(ctx context.Context) (*router.Service, error) {
	if a.routes != nil {
		return a.routes, nil
	}

	t, err := a.topology()
	if err != nil {
		return nil, err
	}
	registry, err := a.groups(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := a.aws(ctx)
	if err != nil {
		return nil, err
	}

	var enricher router.EnricherInterface
	if t.Strategy == router.StrategyRelay {
		dir, err := a.directory(ctx)
		if err != nil {
			return nil, err
		}
		enricher = a.routerEnricher(dir, registry)
	}

	publisher := eventbus.NewPublisher(eventbridge.NewFromConfig(cfg), a.tracer, a.monitor, a.logger)

	a.routes = router.NewService(t, registry, publisher, enricher, a.tracer, a.monitor, a.logger)

	return a.routes, nil
}

func (a *app) reconcilerService(ctx context.Context) (*reconciler.Service, error) {
	registry, err := a.groups(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := a.identityCache(ctx)
	if err != nil {
		return nil, err
	}
	database, err := a.dbAdmin(ctx)
	if err != nil {
		return nil, err
	}

	resolver := enrichment.NewResolver(dir, cache, a.tracer, a.monitor, a.logger)

	return reconciler.NewService(
		database, cache, dir, resolver, registry,
		a.tracer, a.monitor, a.logger,
		reconciler.WithRoleGrants(a.specs.GrantGroupRoles),
	), nil
}

func (a *app) failureService(ctx context.Context) (*failures.Service, error) {
	sinks := make([]failures.SinkInterface, 0, 1)

	if a.specs.SNSARN != "" {
		cfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewSNSSink(sns.NewFromConfig(cfg), a.specs.SNSARN, a.tracer, a.monitor, a.logger))
	} else {
		a.logger.Warn("SNS_ARN is not set, failures are only logged")
	}

	return failures.NewService(sinks, a.tracer, a.monitor, a.logger), nil
}

// runner builds a pipeline with the named stages.
func (a *app) runner(ctx context.Context, stages ...string) (*pipeline.Runner, error) {
	built := make([]pipeline.Stage, 0, len(stages))

	for _, name := range stages {
		switch name {
		case pipeline.StageRouter, pipeline.StageRelay:
			routerService, err := a.routerService(ctx)
			if err != nil {
				return nil, err
			}

			channel := ""
			if name == pipeline.StageRelay {
				if routerService.Topology().Strategy != router.StrategyRelay {
					return nil, fmt.Errorf("stage %q requires ROUTING_STRATEGY=relay", name)
				}
				channel = router.RelayChannel
			}
			built = append(built, pipeline.RouterStage(name, channel, routerService))
		case pipeline.StageReconciler:
			s, err := a.reconcilerService(ctx)
			if err != nil {
				return nil, err
			}
			built = append(built, pipeline.ReconcilerStage(s))
		case pipeline.StageFailures:
			// failure records have a dedicated entry point
		default:
			return nil, fmt.Errorf("%w: %q", pipeline.ErrUnknownStage, name)
		}
	}

	failureService, err := a.failureService(ctx)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(
		built, failureService,
		a.tracer, a.monitor, a.logger,
		pipeline.WithTimeout(a.specs.InvocationTimeout),
	), nil
}

func (a *app) sweeper(ctx context.Context) (*sweep.Sweeper, error) {
	registry, err := a.groups(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := a.identityCache(ctx)
	if err != nil {
		return nil, err
	}
	r, err := a.reconcilerService(ctx)
	if err != nil {
		return nil, err
	}

	apply := func(ctx context.Context, e *types.DirectoryEvent) error {
		_, err := r.Reconcile(ctx, e)
		return err
	}

	return sweep.NewSweeper(
		registry, dir, cache, apply,
		a.tracer, a.monitor, a.logger,
		sweep.WithConcurrency(a.specs.SweepConcurrency),
		sweep.WithRate(a.specs.SweepRate),
	), nil
}
