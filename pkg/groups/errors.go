package groups

import (
	"fmt"
)

// Error codes for registry errors
const (
	ErrCodeGroupNotFound    = "GROUP_NOT_FOUND"
	ErrCodeDuplicateGroup   = "DUPLICATE_GROUP"
	ErrCodeResolutionFailed = "RESOLUTION_FAILED"
	ErrCodeValidationError  = "VALIDATION_ERROR"
)

// GroupError represents a domain-specific error for registry operations
type GroupError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable error message
	Op         string            // Operation that failed (e.g., "Resolve", "NewRegistry")
	Metadata   map[string]string // Additional context about the error
	Underlying error             // The underlying error if any
}

// Error implements the error interface
func (e *GroupError) Error() string {
	msg := e.Message
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *GroupError) Unwrap() error {
	return e.Underlying
}

// Is implements error unwrapping for errors.Is
func (e *GroupError) Is(target error) bool {
	t, ok := target.(*GroupError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrGroupNotFound  = &GroupError{Code: ErrCodeGroupNotFound}
	ErrDuplicateGroup = &GroupError{Code: ErrCodeDuplicateGroup}
	ErrResolution     = &GroupError{Code: ErrCodeResolutionFailed}
	ErrValidation     = &GroupError{Code: ErrCodeValidationError}
)

// Constructor functions for common errors
func NewGroupNotFoundError(group string, op string) *GroupError {
	return &GroupError{
		Code:    ErrCodeGroupNotFound,
		Message: "group not found",
		Op:      op,
		Metadata: map[string]string{
			"group": group,
		},
	}
}

func NewDuplicateGroupError(groupID string, op string) *GroupError {
	return &GroupError{
		Code:    ErrCodeDuplicateGroup,
		Message: "group declared more than once",
		Op:      op,
		Metadata: map[string]string{
			"group_id": groupID,
		},
	}
}

func NewResolutionError(name string, op string, err error) *GroupError {
	return &GroupError{
		Code:    ErrCodeResolutionFailed,
		Message: "failed to resolve group",
		Op:      op,
		Metadata: map[string]string{
			"group_name": name,
		},
		Underlying: err,
	}
}

func NewValidationError(field, reason string, op string) *GroupError {
	return &GroupError{
		Code:    ErrCodeValidationError,
		Message: "validation failed",
		Op:      op,
		Metadata: map[string]string{
			"field":  field,
			"reason": reason,
		},
	}
}
