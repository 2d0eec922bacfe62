// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/identitystore"

	"github.com/canonical/identity-db-sync/internal/types"
)

type DirectoryInterface interface {
	DescribeUser(context.Context, string) (*types.DirectoryUser, error)
	IsMemberOfGroups(context.Context, string, []string) (map[string]bool, error)
	GetGroupID(context.Context, string) (string, error)
	ListGroupMembers(context.Context, string) ([]string, error)
}

// IdentityStoreAPI is the subset of the identitystore client in use.
type IdentityStoreAPI interface {
	DescribeUser(context.Context, *identitystore.DescribeUserInput, ...func(*identitystore.Options)) (*identitystore.DescribeUserOutput, error)
	IsMemberOfGroups(context.Context, *identitystore.IsMemberOfGroupsInput, ...func(*identitystore.Options)) (*identitystore.IsMemberOfGroupsOutput, error)
	GetGroupId(context.Context, *identitystore.GetGroupIdInput, ...func(*identitystore.Options)) (*identitystore.GetGroupIdOutput, error)
	ListGroupMemberships(context.Context, *identitystore.ListGroupMembershipsInput, ...func(*identitystore.Options)) (*identitystore.ListGroupMembershipsOutput, error)
}
