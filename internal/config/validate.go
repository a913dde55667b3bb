// SPDX-License-Identifier: MIT

package config

import (
	"strings"

	"github.com/ManuGH/pendel/internal/validate"
)

// Validate checks the assembled configuration and returns an aggregated
// error naming every invalid field. It is called once by the loader and
// again on every hot reload before a new snapshot is published.
func (c *AppConfig) Validate() error {
	v := validate.New()

	v.ListenAddr("Listen", c.Listen)
	v.Directory("DataDir", c.DataDir, false)

	if _, err := validate.ParseLogLevel(c.LogLevel); err != nil {
		v.AddError("LogLevel", err.Error(), c.LogLevel)
	}

	// Catalog URL is the one hard requirement: the daemon cannot build
	// playlists without a candidate source.
	v.URL("Catalog.BaseURL", c.Catalog.BaseURL, []string{"http", "https"})
	v.PositiveDuration("Catalog.Timeout", c.Catalog.Timeout)
	v.Range("Catalog.Retries", c.Catalog.Retries, 0, 10)
	v.PositiveFloat("Catalog.RatePerSec", c.Catalog.RatePerSec)
	v.Positive("Catalog.Burst", c.Catalog.Burst)

	if _, err := validate.ParseBackend(c.Storage.Backend); err != nil {
		v.AddError("Storage.Backend", err.Error(), c.Storage.Backend)
	}

	v.PositiveDuration("Cache.TTL", c.Cache.TTL)
	if c.Cache.RedisDB < 0 {
		v.AddError("Cache.RedisDB", "redis database index cannot be negative", c.Cache.RedisDB)
	}

	v.Positive("Mastery.FirstBumpAt", c.Mastery.FirstBumpAt)
	if c.Mastery.SecondBumpAt <= c.Mastery.FirstBumpAt {
		v.AddError("Mastery.SecondBumpAt",
			"second bump threshold must be greater than the first",
			c.Mastery.SecondBumpAt)
	}

	if len(c.Warm.Topics) > 0 {
		v.PositiveDuration("Warm.Interval", c.Warm.Interval)
		for _, topic := range c.Warm.Topics {
			if strings.TrimSpace(topic) == "" {
				v.AddError("Warm.Topics", "topic cannot be blank", topic)
			}
		}
	}

	if c.OTLP.Endpoint != "" {
		v.OneOf("OTLP.Protocol", c.OTLP.Protocol, []string{"grpc", "http"})
	}

	v.Positive("RateLimit.RequestsPerMinute", c.RateLimit.RequestsPerMinute)

	return v.Err()
}
