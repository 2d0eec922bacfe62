// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"strings"
)

type Config struct {
	Issuer          string
	JWKSURL         string
	AllowedSubjects []string
}

func NewConfig(issuer, jwksURL, allowedSubjects string) *Config {
	c := &Config{
		Issuer:  issuer,
		JWKSURL: jwksURL,
	}

	if allowedSubjects != "" {
		for _, s := range strings.Split(allowedSubjects, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.AllowedSubjects = append(c.AllowedSubjects, s)
			}
		}
	}

	return c
}

// SubjectAllowed reports whether sub may call the API. An empty allow list admits every subject.
func (c *Config) SubjectAllowed(sub string) bool {
	if len(c.AllowedSubjects) == 0 {
		return true
	}
	for _, s := range c.AllowedSubjects {
		if s == sub {
			return true
		}
	}
	return false
}
