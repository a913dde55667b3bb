// SPDX-License-Identifier: MIT
package validate

import "strings"

// LogLevel represents valid log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (l LogLevel) String() string {
	return string(l)
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", ErrInvalidLogLevel
	}
	return level, nil
}

// Backend represents valid watch-history storage backends
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendBadger Backend = "badger"
)

// IsValid checks if the backend is valid
func (b Backend) IsValid() bool {
	switch b {
	case BackendMemory, BackendSQLite, BackendBadger:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (b Backend) String() string {
	return string(b)
}

// ParseBackend parses a string into a Backend
func ParseBackend(s string) (Backend, error) {
	backend := Backend(strings.ToLower(strings.TrimSpace(s)))
	if !backend.IsValid() {
		return "", ErrInvalidBackend
	}
	return backend, nil
}

// Common validation errors
var (
	ErrInvalidLogLevel = &Error{
		Field:   "logLevel",
		Message: "invalid log level (must be: debug, info, warn, error)",
	}
	ErrInvalidBackend = &Error{
		Field:   "backend",
		Message: "invalid storage backend (must be: memory, sqlite, badger)",
	}
)
