// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dynamo

import (
	"fmt"
	"strconv"
	"time"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/canonical/identity-db-sync/internal/types"
)

const (
	attrUserID    = "userID"
	attrUsername  = "username"
	attrRole      = "role"
	attrState     = "state"
	attrEventTime = "eventTime"
	attrUpdatedAt = "updatedAt"
	attrExpiresAt = "expiresAt"
)

// Item is a shorthand for a DynamoDB item.
type Item = map[string]ddbtypes.AttributeValue

func StringAttribute(s string) ddbtypes.AttributeValue {
	return &ddbtypes.AttributeValueMemberS{Value: s}
}

func NumberAttribute(n int64) ddbtypes.AttributeValue {
	return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func key(userID string) Item {
	return Item{attrUserID: StringAttribute(userID)}
}

// toItem encodes an entry. Event and update times are unix nanoseconds,
// expiresAt is unix seconds as DynamoDB TTL requires.
func toItem(e *types.CacheEntry) Item {
	item := Item{
		attrUserID:    StringAttribute(e.UserID),
		attrState:     StringAttribute(string(e.State)),
		attrEventTime: NumberAttribute(e.EventTime.UnixNano()),
		attrUpdatedAt: NumberAttribute(e.UpdatedAt.UnixNano()),
	}
	if e.Username != "" {
		item[attrUsername] = StringAttribute(e.Username)
	}
	if e.Role != "" {
		item[attrRole] = StringAttribute(e.Role)
	}
	if e.ExpiresAt != nil {
		item[attrExpiresAt] = NumberAttribute(e.ExpiresAt.Unix())
	}
	return item
}

func fromItem(item Item) (*types.CacheEntry, error) {
	e := new(types.CacheEntry)

	e.UserID = stringValue(item[attrUserID])
	e.Username = stringValue(item[attrUsername])
	e.Role = stringValue(item[attrRole])
	e.State = types.CacheState(stringValue(item[attrState]))

	// items written before states existed are plain mappings
	if e.State == "" {
		e.State = types.CacheStateManaged
	}

	if e.UserID == "" {
		return nil, fmt.Errorf("item without %s", attrUserID)
	}

	eventTime, err := numberValue(item[attrEventTime])
	if err != nil {
		return nil, err
	}
	e.EventTime = time.Unix(0, eventTime).UTC()

	updatedAt, err := numberValue(item[attrUpdatedAt])
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Unix(0, updatedAt).UTC()

	if _, ok := item[attrExpiresAt]; ok {
		expiresAt, err := numberValue(item[attrExpiresAt])
		if err != nil {
			return nil, err
		}
		t := time.Unix(expiresAt, 0).UTC()
		e.ExpiresAt = &t
	}

	return e, nil
}

func stringValue(v ddbtypes.AttributeValue) string {
	if s, ok := v.(*ddbtypes.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func numberValue(v ddbtypes.AttributeValue) (int64, error) {
	if v == nil {
		return 0, nil
	}
	n, ok := v.(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute is not a number: %T", v)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}
