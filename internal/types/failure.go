// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Failure is a failed processing step as reported to operators.
type Failure struct {
	Stage         string          `json:"stage,omitempty"`
	Kind          string          `json:"event_type,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Code          string          `json:"code,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	FunctionError string          `json:"function_error,omitempty"`
	StatusCode    int             `json:"status_code,omitempty"`
}

// Body renders the human readable notification text.
func (f Failure) Body() string {
	b := new(strings.Builder)

	if f.Kind != "" {
		fmt.Fprintf(b, "Error processing event %q", f.Kind)
	} else {
		b.WriteString("Error processing event")
	}
	if f.UserID != "" {
		fmt.Fprintf(b, " for user %q", f.UserID)
	}
	b.WriteString(".\n")

	if f.Stage != "" {
		fmt.Fprintf(b, "Stage: %s\n", f.Stage)
	}
	if f.Code != "" {
		fmt.Fprintf(b, "Code: %s\n", f.Code)
	}
	if f.FunctionError != "" || f.StatusCode != 0 {
		fmt.Fprintf(b, "Function error: %s (status %d)\n", f.FunctionError, f.StatusCode)
	}
	if f.Reason != "" {
		fmt.Fprintf(b, "Reason: %s\n", f.Reason)
	}
	if len(f.Payload) > 0 {
		fmt.Fprintf(b, "Payload: %s\n", f.Payload)
	}

	return b.String()
}
