// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/pendel/internal/log"
)

// Loader assembles an AppConfig from three layers: compiled defaults, an
// optional YAML file, and PENDEL_* environment overrides. Environment wins.
type Loader struct {
	configPath string
	version    string

	// ConsumedEnvKeys records every environment key the loader consulted,
	// in consultation order. Exposed for the startup log and for tests.
	ConsumedEnvKeys []string
}

// NewLoader returns a Loader for the given file path. An empty path skips
// the file layer entirely.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Load builds the effective configuration. The returned config has passed
// Validate; DataDir is absolute.
func (l *Loader) Load() (*AppConfig, error) {
	cfg := defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.applyFile(&cfg); err != nil {
			return nil, err
		}
	}
	l.applyEnv(&cfg)

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir %q: %w", cfg.DataDir, err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.WithComponent("config")
	logger.Info().
		Str("event", "config.loaded").
		Str("path", l.configPath).
		Str("listen", cfg.Listen).
		Str("data_dir", cfg.DataDir).
		Str("storage_backend", cfg.Storage.Backend).
		Int("env_keys_consumed", len(l.ConsumedEnvKeys)).
		Msg("configuration loaded")

	return &cfg, nil
}

// applyFile merges the YAML file into cfg. Unknown fields and trailing
// documents are rejected so typos fail loudly instead of silently.
func (l *Loader) applyFile(cfg *AppConfig) error {
	raw, err := os.ReadFile(l.configPath) // #nosec G304 -- path comes from the operator's flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger := log.WithComponent("config")
			logger.Warn().
				Str("event", "config.file_missing").
				Str("path", l.configPath).
				Msg("config file not found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("read config file %q: %w", l.configPath, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", l.configPath, err)
	}
	// A second document in the same file is almost always a paste error.
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file %q: unexpected trailing document", l.configPath)
	}
	return nil
}

// applyEnv overlays PENDEL_* environment variables onto cfg.
func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.Listen = l.str("PENDEL_LISTEN", cfg.Listen)
	cfg.DataDir = l.str("PENDEL_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = l.str("PENDEL_LOG_LEVEL", cfg.LogLevel)
	cfg.APIToken = l.str("PENDEL_API_TOKEN", cfg.APIToken)

	cfg.Catalog.BaseURL = l.str("PENDEL_CATALOG_URL", cfg.Catalog.BaseURL)
	cfg.Catalog.Timeout = l.dur("PENDEL_CATALOG_TIMEOUT", cfg.Catalog.Timeout)
	cfg.Catalog.Retries = l.num("PENDEL_CATALOG_RETRIES", cfg.Catalog.Retries)
	cfg.Catalog.RatePerSec = l.flt("PENDEL_CATALOG_RATE", cfg.Catalog.RatePerSec)
	cfg.Catalog.Burst = l.num("PENDEL_CATALOG_BURST", cfg.Catalog.Burst)

	cfg.Storage.Backend = l.str("PENDEL_STORAGE_BACKEND", cfg.Storage.Backend)

	cfg.Cache.TTL = l.dur("PENDEL_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.str("PENDEL_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.str("PENDEL_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.num("PENDEL_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Mastery.FirstBumpAt = l.num("PENDEL_MASTERY_FIRST_BUMP", cfg.Mastery.FirstBumpAt)
	cfg.Mastery.SecondBumpAt = l.num("PENDEL_MASTERY_SECOND_BUMP", cfg.Mastery.SecondBumpAt)

	cfg.Warm.Topics = l.list("PENDEL_WARM_TOPICS", cfg.Warm.Topics)
	cfg.Warm.Interval = l.dur("PENDEL_WARM_INTERVAL", cfg.Warm.Interval)

	cfg.OTLP.Endpoint = l.str("PENDEL_OTLP_ENDPOINT", cfg.OTLP.Endpoint)
	cfg.OTLP.Protocol = l.str("PENDEL_OTLP_PROTOCOL", cfg.OTLP.Protocol)
	cfg.OTLP.Insecure = l.boolean("PENDEL_OTLP_INSECURE", cfg.OTLP.Insecure)

	cfg.RateLimit.RequestsPerMinute = l.num("PENDEL_RATE_LIMIT_RPM", cfg.RateLimit.RequestsPerMinute)
}

func (l *Loader) str(key, def string) string {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseString(key, def)
}

func (l *Loader) num(key string, def int) int {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseInt(key, def)
}

func (l *Loader) flt(key string, def float64) float64 {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseFloat(key, def)
}

func (l *Loader) dur(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseDuration(key, def)
}

func (l *Loader) boolean(key string, def bool) bool {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseBool(key, def)
}

func (l *Loader) list(key string, def []string) []string {
	l.ConsumedEnvKeys = append(l.ConsumedEnvKeys, key)
	return ParseList(key, def)
}
