// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package awssdk

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const sessionName = "identity-db-sync"

// LoadDefault loads the AWS configuration from the standard credential chain.
func LoadDefault(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		return awsconfig.LoadDefaultConfig(ctx)
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// AssumeRole returns a copy of cfg whose credentials come from assuming
// roleARN, used to reach the directory from another account.
func AssumeRole(cfg aws.Config, roleARN string) aws.Config {
	if roleARN == "" {
		return cfg
	}

	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = sessionName
	})

	out := cfg.Copy()
	out.Credentials = aws.NewCredentialsCache(provider)
	return out
}
