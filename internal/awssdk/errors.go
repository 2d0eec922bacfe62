// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package awssdk

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ConflictError is a failed conditional write; retrying the same request cannot succeed.
type ConflictError struct{ Cause error }

func (e *ConflictError) Error() string { return fmt.Sprintf("conflict: %v", e.Cause) }
func (e *ConflictError) Unwrap() error { return e.Cause }

// NotFoundError is a missing resource.
type NotFoundError struct{ Cause error }

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %v", e.Cause) }
func (e *NotFoundError) Unwrap() error { return e.Cause }

// RetryableError may succeed on retry with backoff.
type RetryableError struct{ Cause error }

func (e *RetryableError) Error() string { return fmt.Sprintf("retryable: %v", e.Cause) }
func (e *RetryableError) Unwrap() error { return e.Cause }

// OpError wraps every other failure.
type OpError struct{ Cause error }

func (e *OpError) Error() string { return fmt.Sprintf("op error: %v", e.Cause) }
func (e *OpError) Unwrap() error { return e.Cause }

// Classify maps smithy API errors to a small set of categories.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var api smithy.APIError
	if errors.As(err, &api) {
		switch api.ErrorCode() {
		case "ConditionalCheckFailedException", "TransactionCanceledException":
			return &ConflictError{Cause: err}
		case "ResourceNotFoundException", "NotFoundException":
			return &NotFoundError{Cause: err}
		case "ProvisionedThroughputExceededException", "ThrottlingException", "Throttling", "TooManyRequestsException",
			"RequestLimitExceeded", "LimitExceededException", "TransactionInProgressException",
			"InternalServerException", "InternalException", "ServiceUnavailable":
			return &RetryableError{Cause: err}
		}
	}

	return &OpError{Cause: err}
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(Classify(err), &c)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(Classify(err), &n)
}
