// SPDX-License-Identifier: MIT

// Package ratelimit paces outbound catalog traffic. The upstream is a
// shared service and a single misbehaving warm loop must not hammer it.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	throttleWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pendel",
			Name:      "outbound_throttle_waits_total",
			Help:      "Outbound requests that had to wait for a rate token",
		},
		[]string{"target"},
	)
	throttleRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pendel",
			Name:      "outbound_throttle_rejects_total",
			Help:      "Outbound requests rejected because the limiter context expired",
		},
		[]string{"target"},
	)
)

// Config holds outbound pacing configuration.
type Config struct {
	// RatePerSec is the sustained request rate toward one target.
	RatePerSec float64
	// Burst is the number of requests that may go out back to back.
	Burst int
}

// DefaultConfig returns sensible defaults for a self-hosted upstream.
func DefaultConfig() Config {
	return Config{
		RatePerSec: 4,
		Burst:      8,
	}
}

// Pacer rate-limits outbound requests per named target.
type Pacer struct {
	config Config

	mu      sync.Mutex
	targets map[string]*rate.Limiter
}

// NewPacer creates a pacer with the given config. Non-positive values fall
// back to defaults.
func NewPacer(config Config) *Pacer {
	def := DefaultConfig()
	if config.RatePerSec <= 0 {
		config.RatePerSec = def.RatePerSec
	}
	if config.Burst <= 0 {
		config.Burst = def.Burst
	}
	return &Pacer{
		config:  config,
		targets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request toward target may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context, target string) error {
	limiter := p.limiterFor(target)

	// Fast path: token available, no wait to account for.
	if limiter.Allow() {
		return nil
	}

	throttleWaits.WithLabelValues(target).Inc()
	if err := limiter.Wait(ctx); err != nil {
		throttleRejects.WithLabelValues(target).Inc()
		return err
	}
	return nil
}

// Allow reports whether a request toward target may proceed right now.
func (p *Pacer) Allow(target string) bool {
	return p.limiterFor(target).Allow()
}

// Reserve returns the delay before a request toward target may proceed.
func (p *Pacer) Reserve(target string) time.Duration {
	r := p.limiterFor(target).Reserve()
	if !r.OK() {
		return rate.InfDuration
	}
	return r.Delay()
}

func (p *Pacer) limiterFor(target string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, exists := p.targets[target]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(p.config.RatePerSec), p.config.Burst)
		p.targets[target] = limiter
	}
	return limiter
}
