// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"fmt"

	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/filter"
)

const directoryEventSource = "sso-directory.amazonaws.com"

// Rule is an event bus rule realising one edge of the topology.
type Rule struct {
	Name    string         `yaml:"name" json:"name"`
	Bus     string         `yaml:"bus" json:"bus"`
	Target  string         `yaml:"target" json:"target"`
	Pattern map[string]any `yaml:"pattern" json:"pattern"`
}

// GroupIDs is the part of the registry needed to render patterns.
type GroupIDs interface {
	IDs() []string
}

func directoryPattern(kind types.EventKind, groupIDs []string) map[string]any {
	detail := map[string]any{
		"eventSource": []string{directoryEventSource},
		"eventName":   []string{string(kind)},
	}
	if groupIDs != nil {
		detail["requestParameters"] = map[string]any{
			"groupId": groupIDs,
		}
	}

	return map[string]any{
		"source": []string{types.DirectorySource},
		"detail": detail,
	}
}

// EventPatterns renders the event bus rules equivalent to the topology.
// Edges leaving the entry channel match raw directory events, later edges
// forward everything.
func (t *Topology) EventPatterns(groups GroupIDs) []Rule {
	entry := t.Entry()
	rules := make([]Rule, 0)

	for _, e := range t.Edges {
		bus := "default"
		if from := t.Channels[e.From].Bus; from.Name != "" {
			bus = from.ARN()
		}
		target := t.Channels[e.To].Bus.ARN()

		if e.From != entry || e.Filter.PassThrough() {
			rules = append(rules, Rule{
				Name:    fmt.Sprintf("%s-to-%s-forward-all", e.From, e.To),
				Bus:     bus,
				Target:  target,
				Pattern: map[string]any{"source": []map[string]string{{"prefix": ""}}},
			})
			continue
		}

		var kinds []types.EventKind
		switch e.Filter.Type {
		case filter.TypeGroup:
			kinds = []types.EventKind{types.MemberAddedToGroup, types.MemberRemovedFromGroup, types.UserDeleted}
		case filter.TypeKinds:
			kinds = e.Filter.Kinds
		}

		for _, kind := range kinds {
			var ids []string
			if e.Filter.Type == filter.TypeGroup && kind.IsMembership() {
				ids = groups.IDs()
			}

			rules = append(rules, Rule{
				Name:    fmt.Sprintf("%s-to-%s-%s", e.From, e.To, kind),
				Bus:     bus,
				Target:  target,
				Pattern: directoryPattern(kind, ids),
			})
		}
	}

	return rules
}
