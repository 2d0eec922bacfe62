// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Security() SecurityLoggerInterface
	Sync() error
}

// SecurityLoggerInterface emits audit events using the OWASP logging vocabulary.
type SecurityLoggerInterface interface {
	SystemStartup(...Option)
	SystemShutdown(...Option)
	UserProvisioned(string, string, ...Option)
	UserDeprovisioned(string, string, ...Option)
	AuthnFailure(string, ...Option)
}
