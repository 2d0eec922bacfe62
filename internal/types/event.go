// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventKind is the directory operation name that produced an event.
type EventKind string

const (
	UserCreated            EventKind = "CreateUser"
	UserDeleted            EventKind = "DeleteUser"
	MemberAddedToGroup     EventKind = "AddMemberToGroup"
	MemberRemovedFromGroup EventKind = "RemoveMemberFromGroup"
)

var ErrInvalidEvent = errors.New("invalid event")

// Kinds lists every known event kind.
func Kinds() []EventKind {
	return []EventKind{UserCreated, UserDeleted, MemberAddedToGroup, MemberRemovedFromGroup}
}

func (k EventKind) Known() bool {
	switch k {
	case UserCreated, UserDeleted, MemberAddedToGroup, MemberRemovedFromGroup:
		return true
	}
	return false
}

// IsMembership reports whether the kind carries a group ID.
func (k EventKind) IsMembership() bool {
	return k == MemberAddedToGroup || k == MemberRemovedFromGroup
}

// IsRemoval reports whether the kind deprovisions a user.
func (k EventKind) IsRemoval() bool {
	return k == UserDeleted || k == MemberRemovedFromGroup
}

// DirectoryEvent is a single fact emitted by the identity directory, possibly
// enriched along the way.
type DirectoryEvent struct {
	Kind            EventKind `json:"event_type" validate:"required,oneof=CreateUser DeleteUser AddMemberToGroup RemoveMemberFromGroup"`
	UserID          string    `json:"user_id" validate:"required"`
	GroupID         string    `json:"group_id,omitempty" validate:"required_if=Kind AddMemberToGroup,required_if=Kind RemoveMemberFromGroup"`
	Username        string    `json:"user_name,omitempty"`
	RoleName        string    `json:"role_name,omitempty"`
	IdentityStoreID string    `json:"identity_store_id,omitempty"`
	EventID         string    `json:"event_id,omitempty"`
	Time            time.Time `json:"time"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the event is complete enough to be routed and reconciled.
func (e *DirectoryEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: empty event", ErrInvalidEvent)
	}

	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	// ordering in the identity cache depends on it
	if e.Time.IsZero() {
		return fmt.Errorf("%w: missing event time", ErrInvalidEvent)
	}

	return nil
}

func (e *DirectoryEvent) String() string {
	if e.Kind.IsMembership() {
		return fmt.Sprintf("%s(user=%s, group=%s)", e.Kind, e.UserID, e.GroupID)
	}
	return fmt.Sprintf("%s(user=%s)", e.Kind, e.UserID)
}
