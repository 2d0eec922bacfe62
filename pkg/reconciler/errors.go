// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package reconciler

import (
	"errors"
	"fmt"

	"github.com/canonical/identity-db-sync/internal/types"
)

// Error codes for reconciliation errors
const (
	ErrCodeTransient            = "TRANSIENT"
	ErrCodeUnresolvableIdentity = "UNRESOLVABLE_IDENTITY"
	ErrCodePartialCommit        = "PARTIAL_COMMIT"
	ErrCodeUnmanagedConflict    = "UNMANAGED_CONFLICT"
	ErrCodeInvalidEvent         = "INVALID_EVENT"
)

// SyncError represents a failed reconciliation step
type SyncError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable error message
	Op         string            // Operation that failed (e.g., "CreateUser", "Tombstone")
	Metadata   map[string]string // Additional context about the error
	Underlying error             // The underlying error if any
}

// Error implements the error interface
func (e *SyncError) Error() string {
	msg := e.Message
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Underlying
}

// Is implements error unwrapping for errors.Is
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrTransient            = &SyncError{Code: ErrCodeTransient}
	ErrUnresolvableIdentity = &SyncError{Code: ErrCodeUnresolvableIdentity}
	ErrPartialCommit        = &SyncError{Code: ErrCodePartialCommit}
	ErrUnmanagedConflict    = &SyncError{Code: ErrCodeUnmanagedConflict}
	ErrInvalidEvent         = &SyncError{Code: ErrCodeInvalidEvent}
)

func eventMetadata(e *types.DirectoryEvent) map[string]string {
	m := map[string]string{
		"event_type": string(e.Kind),
		"user_id":    e.UserID,
	}
	if e.GroupID != "" {
		m["group_id"] = e.GroupID
	}
	if e.EventID != "" {
		m["event_id"] = e.EventID
	}
	return m
}

// Constructor functions for common errors
func NewTransientError(e *types.DirectoryEvent, op string, err error) *SyncError {
	return &SyncError{
		Code:       ErrCodeTransient,
		Message:    "temporary failure",
		Op:         op,
		Metadata:   eventMetadata(e),
		Underlying: err,
	}
}

func NewUnresolvableIdentityError(e *types.DirectoryEvent, op string, err error) *SyncError {
	return &SyncError{
		Code:       ErrCodeUnresolvableIdentity,
		Message:    "user could not be resolved in directory or identity cache",
		Op:         op,
		Metadata:   eventMetadata(e),
		Underlying: err,
	}
}

// NewInvalidUsernameError reports a directory username the database cannot
// hold. Redelivery cannot change the name, so it is not retried.
func NewInvalidUsernameError(e *types.DirectoryEvent, username, op string, err error) *SyncError {
	m := eventMetadata(e)
	m["user_name"] = username
	return &SyncError{
		Code:       ErrCodeUnresolvableIdentity,
		Message:    "username is not a valid database identifier",
		Op:         op,
		Metadata:   m,
		Underlying: err,
	}
}

// databaseError codes a failed database call for the given username.
func databaseError(e *types.DirectoryEvent, username, op string, err error) *SyncError {
	if errors.Is(err, types.ErrInvalidIdentifier) {
		return NewInvalidUsernameError(e, username, op, err)
	}
	return NewTransientError(e, op, err)
}

func NewPartialCommitError(e *types.DirectoryEvent, username, op string, err error) *SyncError {
	m := eventMetadata(e)
	m["user_name"] = username
	return &SyncError{
		Code:       ErrCodePartialCommit,
		Message:    "database and identity cache disagree",
		Op:         op,
		Metadata:   m,
		Underlying: err,
	}
}

func NewUnmanagedConflictError(e *types.DirectoryEvent, username, op string) *SyncError {
	m := eventMetadata(e)
	m["user_name"] = username
	return &SyncError{
		Code:     ErrCodeUnmanagedConflict,
		Message:  "database user exists but is not managed by this system",
		Op:       op,
		Metadata: m,
	}
}

func NewInvalidEventError(op string, err error) *SyncError {
	return &SyncError{
		Code:       ErrCodeInvalidEvent,
		Message:    "event rejected",
		Op:         op,
		Underlying: err,
	}
}

// Code returns the error code of err, or TRANSIENT for uncoded errors.
func Code(err error) string {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code
	}
	if errors.Is(err, types.ErrInvalidEvent) {
		return ErrCodeInvalidEvent
	}
	return ErrCodeTransient
}

// Retryable reports whether redelivering the event can succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	switch Code(err) {
	case ErrCodeTransient, ErrCodePartialCommit:
		return true
	default:
		return false
	}
}
