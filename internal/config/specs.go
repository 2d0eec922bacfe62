// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	ApiToken string `envconfig:"api_token" default:""`

	AuthenticationEnabled         bool   `envconfig:"authentication_enabled" default:"false"`
	AuthenticationIssuer          string `envconfig:"authentication_issuer" validate:"required_if=AuthenticationEnabled true"`
	AuthenticationJwksURL         string `envconfig:"authentication_jwks_url"`
	AuthenticationAllowedSubjects string `envconfig:"authentication_allowed_subjects"`

	AWSRegion        string  `envconfig:"aws_region"`
	IdentityStoreID  string  `envconfig:"identity_store_id"`
	DirectoryRoleARN string  `envconfig:"directory_role_arn"`
	DirectoryRate    float64 `envconfig:"directory_rate" default:"10"`

	GroupNames string `envconfig:"group_names"`
	GroupIDs   string `envconfig:"group_ids"`

	RoutingStrategy string `envconfig:"routing_strategy" default:"direct" validate:"oneof=direct relay"`
	SourceBusARN    string `envconfig:"source_bus_arn"`
	RelayBusARN     string `envconfig:"relay_bus_arn"`
	TargetBusARN    string `envconfig:"target_bus_arn"`
	RoutesFile      string `envconfig:"routes_file"`

	CacheBackend string        `envconfig:"cache_backend" default:"dynamodb" validate:"oneof=dynamodb postgres memory"`
	DDBTable     string        `envconfig:"ddb_table" default:"identity-cache"`
	TombstoneTTL time.Duration `envconfig:"tombstone_ttl" default:"720h"`

	DSN               string        `envconfig:"DSN" default:""`
	DBMaxConns        int32         `envconfig:"db_max_conns" default:"10"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"1"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	RDSEngine       string `envconfig:"RDS_DB_ENGINE" default:"mysql"`
	RDSEndpoint     string `envconfig:"RDS_DB_EP"`
	RDSPort         int    `envconfig:"RDS_DB_PORT"`
	RDSUser         string `envconfig:"RDS_DB_USER"`
	RDSName         string `envconfig:"RDS_DB_NAME"`
	RDSTLS          bool   `envconfig:"RDS_DB_TLS" default:"true"`
	DBPassword      string `envconfig:"DB_PASSWORD"`
	GrantGroupRoles bool   `envconfig:"grant_group_roles" default:"true"`

	SNSARN string `envconfig:"SNS_ARN"`

	InvocationTimeout time.Duration `envconfig:"invocation_timeout" default:"10s"`

	SweepSchedule    string  `envconfig:"sweep_schedule"`
	SweepConcurrency int     `envconfig:"sweep_concurrency" default:"4" validate:"min=1"`
	SweepRate        float64 `envconfig:"sweep_rate" default:"5"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the cross-field rules envconfig cannot express.
func (s *EnvSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if s.CacheBackend == "postgres" && s.DSN == "" {
		return fmt.Errorf("invalid configuration: CACHE_BACKEND=postgres requires DSN")
	}
	if s.GroupNames == "" && s.GroupIDs == "" {
		return fmt.Errorf("invalid configuration: GROUP_NAMES or GROUP_IDS is required")
	}
	return nil
}
