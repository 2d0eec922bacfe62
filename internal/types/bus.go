// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BusID addresses an event bus by account, region and name.
type BusID struct {
	Partition string `yaml:"partition,omitempty" json:"partition,omitempty"`
	Account   string `yaml:"account" json:"account"`
	Region    string `yaml:"region" json:"region"`
	Name      string `yaml:"name" json:"name"`
}

func (b BusID) IsZero() bool {
	return b.Account == "" && b.Region == "" && b.Name == ""
}

func (b BusID) ARN() string {
	partition := b.Partition
	if partition == "" {
		partition = partitionForRegion(b.Region)
	}
	return fmt.Sprintf("arn:%s:events:%s:%s:event-bus/%s", partition, b.Region, b.Account, b.Name)
}

func partitionForRegion(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(region, "us-gov-"):
		return "aws-us-gov"
	default:
		return "aws"
	}
}

func (b BusID) String() string {
	return b.ARN()
}

// ParseBusARN parses arn:<partition>:events:<region>:<account>:event-bus/<name>.
func ParseBusARN(arn string) (BusID, error) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" || parts[2] != "events" {
		return BusID{}, fmt.Errorf("invalid event bus arn %q", arn)
	}

	name, ok := strings.CutPrefix(parts[5], "event-bus/")
	if !ok || name == "" {
		return BusID{}, fmt.Errorf("invalid event bus arn %q", arn)
	}
	if parts[3] == "" || parts[4] == "" {
		return BusID{}, fmt.Errorf("event bus arn %q misses region or account", arn)
	}

	return BusID{Partition: parts[1], Region: parts[3], Account: parts[4], Name: name}, nil
}

// UnmarshalYAML accepts either an ARN string or the expanded mapping.
func (b *BusID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value == "" {
			*b = BusID{}
			return nil
		}
		parsed, err := ParseBusARN(value.Value)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}

	type plain BusID
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*b = BusID(p)
	return nil
}
