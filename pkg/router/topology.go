// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package router

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/canonical/identity-db-sync/pkg/filter"
)

type Strategy string

const (
	// StrategyDirect forwards filtered events straight to the target bus.
	StrategyDirect Strategy = "direct"
	// StrategyRelay enriches filtered events and forwards them through an intermediate bus.
	StrategyRelay Strategy = "relay"
)

const (
	SourceChannel = "source"
	RelayChannel  = "relay"
	TargetChannel = "target"
)

var ErrInvalidTopology = errors.New("invalid routing topology")

// Channel is a named bus in the routing graph. The entry channel may omit
// its bus when events arrive on the account default bus.
type Channel struct {
	Name string `yaml:"name" json:"name"`
	Bus  BusID  `yaml:"bus" json:"bus"`
}

type Edge struct {
	From   string            `yaml:"from" json:"from"`
	To     string            `yaml:"to" json:"to"`
	Filter filter.EdgeFilter `yaml:"filter" json:"filter"`
	Enrich bool              `yaml:"enrich,omitempty" json:"enrich,omitempty"`
}

// Topology is the directed graph of channels events travel through.
type Topology struct {
	Strategy Strategy           `yaml:"strategy" json:"strategy"`
	Target   string             `yaml:"target" json:"target"`
	Channels map[string]Channel `yaml:"channels" json:"channels"`
	Edges    []Edge             `yaml:"edges" json:"edges"`
}

// DefaultTopology builds the graph for one of the two deployment shapes.
func DefaultTopology(strategy Strategy, source, relay, target BusID) (*Topology, error) {
	t := &Topology{
		Strategy: strategy,
		Target:   TargetChannel,
		Channels: map[string]Channel{
			SourceChannel: {Name: SourceChannel, Bus: source},
			TargetChannel: {Name: TargetChannel, Bus: target},
		},
	}

	switch strategy {
	case StrategyDirect:
		t.Edges = []Edge{
			{From: SourceChannel, To: TargetChannel, Filter: filter.Group()},
		}
	case StrategyRelay:
		t.Channels[RelayChannel] = Channel{Name: RelayChannel, Bus: relay}
		t.Edges = []Edge{
			{From: SourceChannel, To: RelayChannel, Filter: filter.Group(), Enrich: true},
			{From: RelayChannel, To: TargetChannel, Filter: filter.All()},
		}
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidTopology, strategy)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// LoadTopology reads a YAML topology and validates it.
func LoadTopology(r io.Reader) (*Topology, error) {
	t := new(Topology)

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}

	for name, c := range t.Channels {
		if c.Name == "" {
			c.Name = name
			t.Channels[name] = c
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

func LoadTopologyFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open routes file: %v", err)
	}
	defer f.Close()

	return LoadTopology(f)
}

func (t *Topology) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTopology, fmt.Sprintf(format, args...))
}

// Validate enforces the routing rules: a single entry channel, filtering and
// enrichment only on the first hop, no cycles and a reachable target.
func (t *Topology) Validate() error {
	if t.Strategy != StrategyDirect && t.Strategy != StrategyRelay {
		return t.invalid("unknown strategy %q", t.Strategy)
	}
	if len(t.Edges) == 0 {
		return t.invalid("no edges")
	}
	if _, ok := t.Channels[t.Target]; !ok {
		return t.invalid("target channel %q is not declared", t.Target)
	}

	incoming := make(map[string]int, len(t.Channels))
	for i, e := range t.Edges {
		if _, ok := t.Channels[e.From]; !ok {
			return t.invalid("edge %d starts at undeclared channel %q", i, e.From)
		}
		if _, ok := t.Channels[e.To]; !ok {
			return t.invalid("edge %d ends at undeclared channel %q", i, e.To)
		}
		if e.From == e.To {
			return t.invalid("edge %d loops on %q", i, e.From)
		}
		if err := e.Filter.Validate(); err != nil {
			return t.invalid("edge %d: %v", i, err)
		}
		incoming[e.To]++
	}

	entries := make([]string, 0, 1)
	for name := range t.Channels {
		if incoming[name] == 0 && len(t.EdgesFrom(name)) > 0 {
			entries = append(entries, name)
		}
	}
	if len(entries) != 1 {
		sort.Strings(entries)
		return t.invalid("expected exactly one entry channel, found %v", entries)
	}
	entry := entries[0]

	for i, e := range t.Edges {
		if e.From != entry && !e.Filter.PassThrough() {
			return t.invalid("edge %d from %q filters after the first hop", i, e.From)
		}
		if e.Enrich && e.From != entry {
			return t.invalid("edge %d from %q enriches after the first hop", i, e.From)
		}
		if e.Enrich && t.Strategy != StrategyRelay {
			return t.invalid("edge %d enriches with strategy %q", i, t.Strategy)
		}
		if t.Strategy == StrategyDirect && e.To != t.Target {
			return t.invalid("direct strategy edge %d does not end at the target", i)
		}
		if t.Channels[e.To].Bus.Name == "" {
			return t.invalid("channel %q has no bus", e.To)
		}
	}

	if len(t.EdgesFrom(t.Target)) > 0 {
		return t.invalid("target channel %q has outgoing edges", t.Target)
	}

	if err := t.checkAcyclic(entry); err != nil {
		return err
	}

	if !t.reachable(entry, t.Target) {
		return t.invalid("target %q is not reachable from %q", t.Target, entry)
	}

	return nil
}

func (t *Topology) checkAcyclic(entry string) error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(t.Channels))

	var visit func(string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return t.invalid("cycle through channel %q", name)
		case done:
			return nil
		}

		state[name] = visiting
		for _, e := range t.EdgesFrom(name) {
			if err := visit(e.To); err != nil {
				return err
			}
		}
		state[name] = done

		return nil
	}

	names := make([]string, 0, len(t.Channels))
	for name := range t.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range append([]string{entry}, names...) {
		if err := visit(name); err != nil {
			return err
		}
	}

	return nil
}

func (t *Topology) reachable(from, to string) bool {
	seen := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == to {
			return true
		}

		for _, e := range t.EdgesFrom(cur) {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	return false
}

// Entry returns the single channel without incoming edges.
func (t *Topology) Entry() string {
	incoming := make(map[string]bool, len(t.Channels))
	for _, e := range t.Edges {
		incoming[e.To] = true
	}

	for _, e := range t.Edges {
		if !incoming[e.From] {
			return e.From
		}
	}

	return ""
}

func (t *Topology) EdgesFrom(channel string) []Edge {
	edges := make([]Edge, 0)
	for _, e := range t.Edges {
		if e.From == channel {
			edges = append(edges, e)
		}
	}
	return edges
}

func (t *Topology) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}
