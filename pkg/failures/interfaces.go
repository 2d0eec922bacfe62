// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package failures

import (
	"context"
	"encoding/json"
)

type ServiceInterface interface {
	Report(context.Context, Failure)
	HandleDestinationRecord(context.Context, json.RawMessage) (*Failure, error)
}

// SinkInterface delivers failure notifications. Implementations log delivery
// errors instead of returning them.
type SinkInterface interface {
	Notify(context.Context, Failure)
}
