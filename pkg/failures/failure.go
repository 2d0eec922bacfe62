// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package failures

import (
	"encoding/json"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/types"
)

// Failure is a failed processing step as reported to operators.
type Failure = types.Failure

// destinationRecord is the document AWS Lambda sends to an on-failure destination.
type destinationRecord struct {
	RequestPayload struct {
		Detail struct {
			EventType string `json:"event_type"`
			EventName string `json:"eventName"`
			UserID    string `json:"user_id"`
		} `json:"detail"`
	} `json:"requestPayload"`
	ResponseContext struct {
		StatusCode    int    `json:"statusCode"`
		FunctionError string `json:"functionError"`
	} `json:"responseContext"`
	ResponsePayload struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorType    string `json:"errorType"`
	} `json:"responsePayload"`
	RequestContext struct {
		FunctionArn string `json:"functionArn"`
		Condition   string `json:"condition"`
	} `json:"requestContext"`
}

// ParseDestinationRecord extracts a Failure from a Lambda destination record.
func ParseDestinationRecord(raw json.RawMessage) (*Failure, error) {
	rec := new(destinationRecord)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("failed to parse destination record: %w", err)
	}

	kind := rec.RequestPayload.Detail.EventType
	if kind == "" {
		kind = rec.RequestPayload.Detail.EventName
	}

	reason := rec.ResponsePayload.ErrorMessage
	if reason == "" {
		reason = rec.RequestContext.Condition
	}

	return &Failure{
		Stage:         rec.RequestContext.FunctionArn,
		Kind:          kind,
		UserID:        rec.RequestPayload.Detail.UserID,
		Reason:        reason,
		Code:          rec.ResponsePayload.ErrorType,
		FunctionError: rec.ResponseContext.FunctionError,
		StatusCode:    rec.ResponseContext.StatusCode,
	}, nil
}
