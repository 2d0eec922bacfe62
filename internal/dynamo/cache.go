// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/canonical/identity-db-sync/internal/awssdk"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/storage"
	"github.com/canonical/identity-db-sync/internal/tracing"
	"github.com/canonical/identity-db-sync/internal/types"
)

// Writes are last-writer-wins on the event time. A managed entry never
// replaces a tombstone of the same time, and a tombstone naming no account
// never replaces a managed entry.
const (
	tombstoneCondition          = "attribute_not_exists(#id) OR attribute_not_exists(#t) OR #t <= :t"
	anonymousTombstoneCondition = "attribute_not_exists(#id) OR (#s = :tombstone AND (attribute_not_exists(#t) OR #t <= :t))"
	putCondition       = "attribute_not_exists(#id) OR attribute_not_exists(#t) OR #t < :t OR (#t = :t AND (attribute_not_exists(#s) OR #s <> :tombstone))"
	releaseCondition   = "#s = :managed AND #t = :t"
)

var _ storage.StorageInterface = (*Cache)(nil)

// Cache is the DynamoDB backed identity cache.
type Cache struct {
	api   DynamoDBAPI
	table string

	tombstoneTTL time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Cache) setAvailable(err error) {
	v := 1.0
	if err != nil && !awssdk.IsConflict(err) {
		v = 0
	}
	c.monitor.SetDependencyAvailability(map[string]string{"component": "dynamodb"}, v)
}

// Get returns the username of a managed user.
func (c *Cache) Get(ctx context.Context, userID string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Get")
	defer span.End()

	e, err := c.Lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	if !e.Managed() {
		return "", types.ErrCacheEntryNotFound
	}
	return e.Username, nil
}

// Lookup returns the stored entry, tombstones included, or nil.
func (c *Cache) Lookup(ctx context.Context, userID string) (*types.CacheEntry, error) {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Lookup")
	defer span.End()

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            key(userID),
		ConsistentRead: aws.Bool(true),
	})
	c.setAvailable(err)

	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", userID, awssdk.Classify(err))
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	return fromItem(out.Item)
}

func (c *Cache) ListManaged(ctx context.Context) ([]*types.CacheEntry, error) {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.ListManaged")
	defer span.End()

	p := dynamodb.NewScanPaginator(c.api, &dynamodb.ScanInput{
		TableName:                aws.String(c.table),
		FilterExpression:         aws.String("#s = :managed"),
		ExpressionAttributeNames: map[string]string{"#s": attrState},
		ExpressionAttributeValues: Item{
			":managed": StringAttribute(string(types.CacheStateManaged)),
		},
		ConsistentRead: aws.Bool(true),
	})

	entries := make([]*types.CacheEntry, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		c.setAvailable(err)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c.table, awssdk.Classify(err))
		}

		for _, item := range page.Items {
			e, err := fromItem(item)
			if err != nil {
				c.logger.Warnf("skipping malformed identity cache item: %v", err)
				continue
			}
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}

func (c *Cache) write(ctx context.Context, e *types.CacheEntry) error {
	e.UpdatedAt = time.Now().UTC()

	in := &dynamodb.PutItemInput{
		TableName:                aws.String(c.table),
		Item:                     toItem(e),
		ConditionExpression:      aws.String(tombstoneCondition),
		ExpressionAttributeNames: map[string]string{"#id": attrUserID, "#t": attrEventTime},
		ExpressionAttributeValues: Item{
			":t": NumberAttribute(e.EventTime.UnixNano()),
		},
	}
	switch {
	case e.State == types.CacheStateManaged:
		in.ConditionExpression = aws.String(putCondition)
	case e.Username == "":
		in.ConditionExpression = aws.String(anonymousTombstoneCondition)
	}
	if aws.ToString(in.ConditionExpression) != tombstoneCondition {
		in.ExpressionAttributeNames["#s"] = attrState
		in.ExpressionAttributeValues[":tombstone"] = StringAttribute(string(types.CacheStateTombstone))
	}

	_, err := c.api.PutItem(ctx, in)
	c.setAvailable(err)

	if awssdk.IsConflict(err) {
		return types.ErrStaleWrite
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", e.UserID, awssdk.Classify(err))
	}
	return nil
}

// Put stores a managed mapping unless a newer event is already recorded.
func (c *Cache) Put(ctx context.Context, e *types.CacheEntry) error {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Put")
	defer span.End()

	entry := *e
	entry.State = types.CacheStateManaged
	entry.ExpiresAt = nil

	return c.write(ctx, &entry)
}

// Tombstone records a deletion at the given event time.
func (c *Cache) Tombstone(ctx context.Context, userID, username string, at time.Time) error {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Tombstone")
	defer span.End()

	expiresAt := at.Add(c.tombstoneTTL)

	return c.write(ctx, &types.CacheEntry{
		UserID:    userID,
		Username:  username,
		State:     types.CacheStateTombstone,
		EventTime: at,
		ExpiresAt: &expiresAt,
	})
}

// Release deletes the managed entry written at the given event time, if it is
// still the stored state.
func (c *Cache) Release(ctx context.Context, userID string, at time.Time) error {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Release")
	defer span.End()

	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(c.table),
		Key:                      key(userID),
		ConditionExpression:      aws.String(releaseCondition),
		ExpressionAttributeNames: map[string]string{"#s": attrState, "#t": attrEventTime},
		ExpressionAttributeValues: Item{
			":managed": StringAttribute(string(types.CacheStateManaged)),
			":t":       NumberAttribute(at.UnixNano()),
		},
	})
	c.setAvailable(err)

	if awssdk.IsConflict(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", userID, awssdk.Classify(err))
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, userID string) error {
	ctx, span := c.tracer.Start(ctx, "dynamo.Cache.Delete")
	defer span.End()

	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key:       key(userID),
	})
	c.setAvailable(err)

	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", userID, awssdk.Classify(err))
	}
	return nil
}

// PurgeExpired is a no-op, the table TTL on expiresAt removes tombstones.
func (c *Cache) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	c.logger.Debugf("tombstones in %s expire through table TTL", c.table)
	return 0, nil
}

func NewCache(api DynamoDBAPI, table string, tombstoneTTL time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Cache {
	c := new(Cache)

	c.api = api
	c.table = table
	c.tombstoneTTL = tombstoneTTL
	if c.tombstoneTTL <= 0 {
		c.tombstoneTTL = storage.DefaultTombstoneTTL
	}

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
