// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"github.com/canonical/identity-db-sync/internal/types"
)

type BusID = types.BusID

func ParseBusARN(arn string) (BusID, error) {
	return types.ParseBusARN(arn)
}
