// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// DirectorySource is the EventBridge source of events emitted by the identity directory through CloudTrail.
const DirectorySource = "aws.sso-directory"

type directoryDetail struct {
	EventName         string `json:"eventName"`
	EventID           string `json:"eventID"`
	RequestParameters struct {
		IdentityStoreID string `json:"identityStoreId"`
		GroupID         string `json:"groupId"`
		UserID          string `json:"userId"`
		MemberID        string `json:"memberId"`
		Member          struct {
			MemberID string `json:"memberId"`
		} `json:"member"`
	} `json:"requestParameters"`
	ResponseElements struct {
		User struct {
			UserID   string `json:"userId"`
			UserName string `json:"userName"`
		} `json:"user"`
	} `json:"responseElements"`
}

// ParseDirectoryDetail extracts a DirectoryEvent from the CloudTrail detail of a directory API call.
func ParseDirectoryDetail(detail json.RawMessage) (*DirectoryEvent, error) {
	d := new(directoryDetail)
	if err := json.Unmarshal(detail, d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	e := &DirectoryEvent{
		Kind:            EventKind(d.EventName),
		IdentityStoreID: d.RequestParameters.IdentityStoreID,
		EventID:         d.EventID,
	}

	switch e.Kind {
	case MemberAddedToGroup:
		e.UserID = d.RequestParameters.Member.MemberID
		e.GroupID = d.RequestParameters.GroupID
	case MemberRemovedFromGroup:
		e.UserID = d.RequestParameters.MemberID
		e.GroupID = d.RequestParameters.GroupID
	case UserDeleted:
		e.UserID = d.RequestParameters.UserID
	case UserCreated:
		e.UserID = d.ResponseElements.User.UserID
		e.Username = d.ResponseElements.User.UserName
	default:
		return nil, fmt.Errorf("%w: unsupported event name %q", ErrInvalidEvent, d.EventName)
	}

	return e, nil
}

// ParseEnvelope decodes an EventBridge envelope carrying either a raw directory
// detail or a forwarded DirectoryEvent, and validates the result.
func ParseEnvelope(raw []byte) (*DirectoryEvent, error) {
	envelope := new(events.CloudWatchEvent)
	if err := json.Unmarshal(raw, envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	return FromCloudWatchEvent(envelope)
}

func FromCloudWatchEvent(envelope *events.CloudWatchEvent) (*DirectoryEvent, error) {
	if len(envelope.Detail) == 0 {
		return nil, fmt.Errorf("%w: missing detail", ErrInvalidEvent)
	}

	var (
		e   *DirectoryEvent
		err error
	)

	if envelope.Source == DirectorySource {
		e, err = ParseDirectoryDetail(envelope.Detail)
		if err != nil {
			return nil, err
		}
	} else {
		e = new(DirectoryEvent)
		if err := json.Unmarshal(envelope.Detail, e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	}

	if e.Time.IsZero() {
		e.Time = envelope.Time
	}
	if e.EventID == "" {
		e.EventID = envelope.ID
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}
