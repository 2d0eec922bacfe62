// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/canonical/identity-db-sync/internal/types"
	"github.com/canonical/identity-db-sync/pkg/filter"
	"github.com/canonical/identity-db-sync/pkg/groups"
)

var (
	sourceBus = BusID{Account: "111111111111", Region: "eu-west-1", Name: "default"}
	relayBus  = BusID{Account: "111111111111", Region: "eu-west-1", Name: "SSO-RDS-Sync-Source"}
	targetBus = BusID{Account: "222222222222", Region: "us-east-1", Name: "SSO-RDS-Sync-Target"}
)

func TestParseBusARN(t *testing.T) {
	arn := "arn:aws:events:us-east-1:222222222222:event-bus/SSO-RDS-Sync-Target"

	b, err := ParseBusARN(arn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Account != "222222222222" || b.Region != "us-east-1" || b.Name != "SSO-RDS-Sync-Target" {
		t.Fatalf("unexpected bus %+v", b)
	}
	if b.ARN() != arn {
		t.Fatalf("expected %s, got %s", arn, b.ARN())
	}

	for _, invalid := range []string{"", "arn:aws:sns:us-east-1:1:topic", "arn:aws:events:us-east-1:1:rule/x", "arn:aws:events::1:event-bus/x"} {
		if _, err := ParseBusARN(invalid); err == nil {
			t.Fatalf("expected error for %q", invalid)
		}
	}
}

func TestDefaultTopology(t *testing.T) {
	direct, err := DefaultTopology(StrategyDirect, sourceBus, BusID{}, targetBus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if direct.Entry() != SourceChannel || len(direct.Edges) != 1 || direct.Edges[0].To != TargetChannel {
		t.Fatalf("unexpected direct topology %+v", direct)
	}

	relay, err := DefaultTopology(StrategyRelay, sourceBus, relayBus, targetBus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relay.Entry() != SourceChannel || len(relay.Edges) != 2 {
		t.Fatalf("unexpected relay topology %+v", relay)
	}
	if !relay.Edges[0].Enrich || !relay.Edges[1].Filter.PassThrough() {
		t.Fatalf("relay must enrich on the first hop and pass everything after, got %+v", relay.Edges)
	}

	if _, err := DefaultTopology("fanout", sourceBus, relayBus, targetBus); !errors.Is(err, ErrInvalidTopology) {
		t.Fatalf("expected ErrInvalidTopology, got %v", err)
	}
	if _, err := DefaultTopology(StrategyRelay, sourceBus, BusID{}, targetBus); !errors.Is(err, ErrInvalidTopology) {
		t.Fatalf("expected relay without relay bus to fail, got %v", err)
	}
}

func TestTopologyValidate(t *testing.T) {
	channels := func() map[string]Channel {
		return map[string]Channel{
			SourceChannel: {Name: SourceChannel, Bus: sourceBus},
			RelayChannel:  {Name: RelayChannel, Bus: relayBus},
			TargetChannel: {Name: TargetChannel, Bus: targetBus},
		}
	}

	tests := []struct {
		name     string
		topology Topology
		contains string
	}{
		{
			name: "filtering after the first hop",
			topology: Topology{Strategy: StrategyRelay, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: RelayChannel, Filter: filter.Group()},
				{From: RelayChannel, To: TargetChannel, Filter: filter.Group()},
			}},
			contains: "filters after the first hop",
		},
		{
			name: "enrichment after the first hop",
			topology: Topology{Strategy: StrategyRelay, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: RelayChannel, Filter: filter.Group()},
				{From: RelayChannel, To: TargetChannel, Filter: filter.All(), Enrich: true},
			}},
			contains: "enriches after the first hop",
		},
		{
			name: "enrichment with direct strategy",
			topology: Topology{Strategy: StrategyDirect, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: TargetChannel, Filter: filter.Group(), Enrich: true},
			}},
			contains: "enriches with strategy",
		},
		{
			name: "direct strategy through relay",
			topology: Topology{Strategy: StrategyDirect, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: RelayChannel, Filter: filter.Group()},
				{From: RelayChannel, To: TargetChannel, Filter: filter.All()},
			}},
			contains: "does not end at the target",
		},
		{
			name: "undeclared channel",
			topology: Topology{Strategy: StrategyDirect, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: "elsewhere", To: TargetChannel, Filter: filter.Group()},
			}},
			contains: "undeclared channel",
		},
		{
			name: "two entry channels",
			topology: Topology{Strategy: StrategyRelay, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: TargetChannel, Filter: filter.Group()},
				{From: RelayChannel, To: TargetChannel, Filter: filter.All()},
			}},
			contains: "exactly one entry channel",
		},
		{
			name: "target unreachable",
			topology: Topology{Strategy: StrategyRelay, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: RelayChannel, Filter: filter.Group()},
			}},
			contains: "not reachable",
		},
		{
			name: "unknown filter",
			topology: Topology{Strategy: StrategyDirect, Target: TargetChannel, Channels: channels(), Edges: []Edge{
				{From: SourceChannel, To: TargetChannel, Filter: filter.EdgeFilter{Type: "regex"}},
			}},
			contains: "unknown filter type",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.topology.Validate()

			if !errors.Is(err, ErrInvalidTopology) {
				t.Fatalf("expected ErrInvalidTopology, got %v", err)
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Fatalf("expected error to mention %q, got %v", test.contains, err)
			}
		})
	}
}

func TestTopologyValidateCycle(t *testing.T) {
	topology := Topology{
		Strategy: StrategyRelay,
		Target:   TargetChannel,
		Channels: map[string]Channel{
			SourceChannel: {Name: SourceChannel, Bus: sourceBus},
			RelayChannel:  {Name: RelayChannel, Bus: relayBus},
			"loop":        {Name: "loop", Bus: relayBus},
			TargetChannel: {Name: TargetChannel, Bus: targetBus},
		},
		Edges: []Edge{
			{From: SourceChannel, To: RelayChannel, Filter: filter.Group()},
			{From: RelayChannel, To: "loop", Filter: filter.All()},
			{From: "loop", To: RelayChannel, Filter: filter.All()},
			{From: RelayChannel, To: TargetChannel, Filter: filter.All()},
		},
	}

	err := topology.Validate()
	if !errors.Is(err, ErrInvalidTopology) || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadTopology(t *testing.T) {
	doc := `
strategy: relay
target: target
channels:
  source: {}
  relay:
    bus: arn:aws:events:eu-west-1:111111111111:event-bus/SSO-RDS-Sync-Source
  target:
    bus:
      account: "222222222222"
      region: us-east-1
      name: SSO-RDS-Sync-Target
edges:
  - from: source
    to: relay
    filter: {type: group}
    enrich: true
  - from: relay
    to: target
    filter: {type: all}
`

	topology, err := LoadTopology(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if topology.Channels[RelayChannel].Bus != relayBus {
		t.Fatalf("expected relay bus %+v, got %+v", relayBus, topology.Channels[RelayChannel].Bus)
	}
	if topology.Channels[TargetChannel].Bus.ARN() != targetBus.ARN() {
		t.Fatalf("expected target bus %s, got %s", targetBus.ARN(), topology.Channels[TargetChannel].Bus.ARN())
	}
	if topology.Channels[SourceChannel].Name != SourceChannel {
		t.Fatalf("expected channel names to default to their key")
	}

	out, err := topology.YAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := LoadTopology(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("rendered topology does not load back: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(again.Edges, topology.Edges) {
		t.Fatalf("expected edges %+v, got %+v", topology.Edges, again.Edges)
	}

	if _, err := LoadTopology(strings.NewReader("strategy: direct\nunknown: 1\n")); !errors.Is(err, ErrInvalidTopology) {
		t.Fatalf("expected unknown fields to be rejected, got %v", err)
	}
}

func TestEventPatterns(t *testing.T) {
	registry, _ := groups.NewRegistry(types.Group{ID: "g-dba", Name: "dba"}, types.Group{ID: "g-read", Name: "readers"})

	topology, _ := DefaultTopology(StrategyRelay, BusID{}, relayBus, targetBus)
	rules := topology.EventPatterns(registry)

	if len(rules) != 4 {
		t.Fatalf("expected 4 rules, got %d: %+v", len(rules), rules)
	}

	byName := make(map[string]Rule)
	for _, r := range rules {
		byName[r.Name] = r
	}

	add, ok := byName["source-to-relay-AddMemberToGroup"]
	if !ok {
		t.Fatalf("missing add rule in %+v", rules)
	}
	if add.Bus != "default" || add.Target != relayBus.ARN() {
		t.Fatalf("unexpected add rule routing %+v", add)
	}

	raw, _ := json.Marshal(add.Pattern)
	expected := `{"detail":{"eventName":["AddMemberToGroup"],"eventSource":["sso-directory.amazonaws.com"],"requestParameters":{"groupId":["g-dba","g-read"]}},"source":["aws.sso-directory"]}`
	if string(raw) != expected {
		t.Fatalf("expected pattern %s, got %s", expected, raw)
	}

	del := byName["source-to-relay-DeleteUser"]
	raw, _ = json.Marshal(del.Pattern)
	if strings.Contains(string(raw), "groupId") {
		t.Fatalf("delete rule must not filter on groups, got %s", raw)
	}

	all := byName["relay-to-target-forward-all"]
	raw, _ = json.Marshal(all.Pattern)
	if string(raw) != `{"source":[{"prefix":""}]}` || all.Bus != relayBus.ARN() || all.Target != targetBus.ARN() {
		t.Fatalf("unexpected catch-all rule %+v %s", all, raw)
	}
}
