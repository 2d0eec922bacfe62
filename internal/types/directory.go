// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import "errors"

var (
	ErrUserNotFound  = errors.New("directory user not found")
	ErrGroupNotFound = errors.New("directory group not found")
)

// DirectoryUser is the subset of directory user attributes the sync relies on.
type DirectoryUser struct {
	UserID   string
	Username string
}
