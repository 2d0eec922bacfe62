// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/document"
	istypes "github.com/aws/aws-sdk-go-v2/service/identitystore/types"
	"golang.org/x/time/rate"

	"github.com/canonical/identity-db-sync/internal/awssdk"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

// isMemberOfGroupsLimit is the identitystore cap on group IDs per call.
const isMemberOfGroupsLimit = 100

var _ DirectoryInterface = (*Client)(nil)

// Client reads users and groups from the IAM Identity Center identity store.
type Client struct {
	api             IdentityStoreAPI
	identityStoreID string
	limiter         *rate.Limiter

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) setAvailable(err error) {
	v := 1.0
	if err != nil && !awssdk.IsNotFound(err) {
		v = 0
	}
	c.monitor.SetDependencyAvailability(map[string]string{"component": "identitystore"}, v)
}

func (c *Client) DescribeUser(ctx context.Context, userID string) (*types.DirectoryUser, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.DescribeUser")
	defer span.End()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.api.DescribeUser(ctx, &identitystore.DescribeUserInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		UserId:          aws.String(userID),
	})
	c.setAvailable(err)

	if awssdk.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", types.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to describe user %s: %w", userID, awssdk.Classify(err))
	}

	return &types.DirectoryUser{
		UserID:   aws.ToString(out.UserId),
		Username: aws.ToString(out.UserName),
	}, nil
}

// IsMemberOfGroups reports, per group ID, whether the user is a member.
func (c *Client) IsMemberOfGroups(ctx context.Context, userID string, groupIDs []string) (map[string]bool, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.IsMemberOfGroups")
	defer span.End()

	result := make(map[string]bool, len(groupIDs))

	for start := 0; start < len(groupIDs); start += isMemberOfGroupsLimit {
		end := min(start+isMemberOfGroupsLimit, len(groupIDs))

		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		out, err := c.api.IsMemberOfGroups(ctx, &identitystore.IsMemberOfGroupsInput{
			IdentityStoreId: aws.String(c.identityStoreID),
			MemberId:        &istypes.MemberIdMemberUserId{Value: userID},
			GroupIds:        groupIDs[start:end],
		})
		c.setAvailable(err)

		if awssdk.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrUserNotFound, userID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check memberships of %s: %w", userID, awssdk.Classify(err))
		}

		for _, r := range out.Results {
			result[aws.ToString(r.GroupId)] = r.MembershipExists
		}
	}

	return result, nil
}

// GetGroupID resolves a group display name to its ID.
func (c *Client) GetGroupID(ctx context.Context, name string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.GetGroupID")
	defer span.End()

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	out, err := c.api.GetGroupId(ctx, &identitystore.GetGroupIdInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		AlternateIdentifier: &istypes.AlternateIdentifierMemberUniqueAttribute{
			Value: istypes.UniqueAttribute{
				AttributePath:  aws.String("displayName"),
				AttributeValue: document.NewLazyDocument(name),
			},
		},
	})
	c.setAvailable(err)

	if awssdk.IsNotFound(err) {
		return "", fmt.Errorf("%w: %s", types.ErrGroupNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve group %s: %w", name, awssdk.Classify(err))
	}

	return aws.ToString(out.GroupId), nil
}

// ListGroupMembers returns the user IDs of every direct member of the group.
func (c *Client) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.ListGroupMembers")
	defer span.End()

	p := identitystore.NewListGroupMembershipsPaginator(c.api, &identitystore.ListGroupMembershipsInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		GroupId:         aws.String(groupID),
	})

	members := make([]string, 0)
	for p.HasMorePages() {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		page, err := p.NextPage(ctx)
		c.setAvailable(err)

		if awssdk.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrGroupNotFound, groupID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s: %w", groupID, awssdk.Classify(err))
		}

		for _, m := range page.GroupMemberships {
			if u, ok := m.MemberId.(*istypes.MemberIdMemberUserId); ok {
				members = append(members, u.Value)
			}
		}
	}

	return members, nil
}

type Option func(*Client)

// WithRateLimit caps directory calls at rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func NewClient(api IdentityStoreAPI, identityStoreID string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface, opts ...Option) *Client {
	c := new(Client)

	c.api = api
	c.identityStoreID = identityStoreID

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	for _, o := range opts {
		o(c)
	}

	return c
}
