// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	appID = "identity-db-sync"

	levelInfo     = "INFO"
	levelWarning  = "WARN"
	levelCritical = "CRITICAL"
)

type Option func(*event)

type event struct {
	level       string
	description string
	fields      []zap.Field
}

// WithContext attaches an extra key/value pair to a security event.
func WithContext(key string, value any) Option {
	return func(e *event) {
		e.fields = append(e.fields, zap.Any(key, value))
	}
}

// WithDescription overrides the default human readable description.
func WithDescription(d string) Option {
	return func(e *event) {
		e.description = d
	}
}

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup(opts ...Option) {
	s.log("sys_startup", levelWarning, "identity-db-sync is starting", opts...)
}

func (s *SecurityLogger) SystemShutdown(opts ...Option) {
	s.log("sys_shutdown", levelWarning, "identity-db-sync is shutting down", opts...)
}

func (s *SecurityLogger) UserProvisioned(username, userID string, opts ...Option) {
	s.log(
		fmt.Sprintf("user_created:%s,%s", appID, username),
		levelInfo,
		fmt.Sprintf("database user %s created for directory user %s", username, userID),
		opts...,
	)
}

func (s *SecurityLogger) UserDeprovisioned(username, userID string, opts ...Option) {
	s.log(
		fmt.Sprintf("user_deleted:%s,%s", appID, username),
		levelCritical,
		fmt.Sprintf("database user %s dropped for directory user %s", username, userID),
		opts...,
	)
}

func (s *SecurityLogger) AuthnFailure(reason string, opts ...Option) {
	s.log(
		fmt.Sprintf("authn_token_invalid:%s", appID),
		levelWarning,
		fmt.Sprintf("rejected API request: %s", reason),
		opts...,
	)
}

func (s *SecurityLogger) log(name, level, description string, opts ...Option) {
	e := &event{level: level, description: description}
	for _, o := range opts {
		o(e)
	}

	fields := append(
		[]zap.Field{
			zap.String("type", "security"),
			zap.String("appid", appID),
			zap.String("event", name),
			zap.String("level", e.level),
		},
		e.fields...,
	)

	s.l.Warn(e.description, fields...)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
