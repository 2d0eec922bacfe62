// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidGroupIDs = errors.New("invalid group ids")

// Group is a relevant directory group and the database role its members receive.
type Group struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// ParseGroupIDs decodes the `{"<groupID>":"<group name>"}` mapping used for explicit group configuration.
// The role of every group defaults to its name.
func ParseGroupIDs(s string) ([]Group, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	m := make(map[string]string)
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGroupIDs, err)
	}

	groups := make([]Group, 0, len(m))
	for id, name := range m {
		if id == "" {
			return nil, fmt.Errorf("%w: empty group id", ErrInvalidGroupIDs)
		}
		groups = append(groups, Group{ID: id, Name: name, Role: name})
	}

	return groups, nil
}

// ParseGroupNames splits a comma separated list of group display names.
func ParseGroupNames(s string) []string {
	names := make([]string, 0)
	for _, n := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
