// SPDX-License-Identifier: MIT

// Package log owns the process-wide zerolog instance. The first Configure
// wins; later calls are no-ops, so init order and tests cannot fight over
// the global state.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stdout)
	Service string    // optional service name attached to every log entry
}

var (
	setupOnce sync.Once
	root      zerolog.Logger
)

// Configure initialises the global logger. Only the first call takes effect.
func Configure(cfg Config) {
	setupOnce.Do(func() {
		zerolog.SetGlobalLevel(resolveLevel(cfg.Level))
		zerolog.TimeFieldFormat = time.RFC3339

		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}

		root = zerolog.New(out).With().
			Timestamp().
			Str("service", serviceName(cfg.Service)).
			Str("version", os.Getenv("VERSION")).
			Logger()
	})
}

// resolveLevel picks the explicit level, then LOG_LEVEL, then info. A value
// zerolog cannot parse falls through; logging must never stop startup.
func resolveLevel(explicit string) zerolog.Level {
	for _, s := range []string{explicit, os.Getenv("LOG_LEVEL")} {
		if s == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(s); err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

func serviceName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("LOG_SERVICE"); env != "" {
		return env
	}
	return "pendel"
}

// Base returns the shared logger, applying defaults on first use.
func Base() zerolog.Logger {
	Configure(Config{})
	return root
}

// WithComponent derives a child logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	base := Base()
	return base.With().Str("component", component).Logger()
}
