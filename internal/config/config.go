// SPDX-License-Identifier: MIT

// Package config loads, validates, and hot-reloads the daemon configuration.
// Precedence is ENV > YAML file > defaults.
package config

import "time"

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	Listen   string `yaml:"listen"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	APIToken string `yaml:"api_token"`

	Catalog   CatalogSettings   `yaml:"catalog"`
	Storage   StorageSettings   `yaml:"storage"`
	Cache     CacheSettings     `yaml:"cache"`
	Mastery   MasterySettings   `yaml:"mastery"`
	Warm      WarmSettings      `yaml:"warm"`
	OTLP      OTLPSettings      `yaml:"otlp"`
	RateLimit RateLimitSettings `yaml:"rate_limit"`
}

// CatalogSettings configures the upstream video catalog client.
type CatalogSettings struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Burst      int           `yaml:"burst"`
}

// StorageSettings selects the watch-history backend.
type StorageSettings struct {
	Backend string `yaml:"backend"` // memory | sqlite | badger
}

// CacheSettings configures the catalog response cache. An empty RedisAddr
// selects the in-memory cache.
type CacheSettings struct {
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// MasterySettings names the difficulty bump thresholds. They are policy and
// deliberately live here rather than inline at a call site.
type MasterySettings struct {
	FirstBumpAt  int `yaml:"first_bump_at"`
	SecondBumpAt int `yaml:"second_bump_at"`
}

// WarmSettings configures the optional catalog cache warmer.
type WarmSettings struct {
	Topics   []string      `yaml:"topics"`
	Interval time.Duration `yaml:"interval"`
}

// OTLPSettings configures trace export. An empty endpoint disables export.
type OTLPSettings struct {
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Insecure bool   `yaml:"insecure"`
}

// RateLimitSettings bounds inbound API traffic per client IP.
type RateLimitSettings struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

func defaults() AppConfig {
	return AppConfig{
		Listen:   ":8080",
		DataDir:  "./data",
		LogLevel: "info",
		Catalog: CatalogSettings{
			Timeout:    10 * time.Second,
			Retries:    3,
			RatePerSec: 4,
			Burst:      8,
		},
		Storage: StorageSettings{Backend: "memory"},
		Cache:   CacheSettings{TTL: 5 * time.Minute},
		Mastery: MasterySettings{FirstBumpAt: 3, SecondBumpAt: 8},
		Warm:    WarmSettings{Interval: 30 * time.Minute},
		OTLP:    OTLPSettings{Protocol: "grpc"},
		RateLimit: RateLimitSettings{
			RequestsPerMinute: 600,
		},
	}
}
