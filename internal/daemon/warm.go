// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/metrics"
)

// defaultWarmInterval guards against a zero interval from config.
const defaultWarmInterval = 30 * time.Minute

// Warmer periodically pre-fetches the configured topics so the first
// commute request of the day hits a warm catalog cache.
type Warmer struct {
	source  catalog.Source
	current func() *config.AppConfig
	logger  zerolog.Logger
}

// NewWarmer creates a cache warmer. current must never return nil; topic
// list and interval are re-read from it on every cycle so config reloads
// take effect without a restart.
func NewWarmer(source catalog.Source, current func() *config.AppConfig, logger zerolog.Logger) *Warmer {
	return &Warmer{
		source:  source,
		current: current,
		logger:  logger.With().Str("component", "warmer").Logger(),
	}
}

// Run warms immediately and then on every configured interval. It returns
// when ctx is cancelled.
func (w *Warmer) Run(ctx context.Context) {
	for {
		cfg := w.current()
		topics := cfg.Warm.Topics
		interval := cfg.Warm.Interval
		if interval <= 0 {
			interval = defaultWarmInterval
		}

		metrics.SetWarmTopics(len(topics))
		if len(topics) > 0 {
			w.warmOnce(ctx, topics)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info().Str("event", "warm.stopped").Msg("cache warmer stopped")
			return
		case <-timer.C:
		}
	}
}

func (w *Warmer) warmOnce(ctx context.Context, topics []string) {
	start := time.Now()
	failed := 0

	for _, topic := range topics {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.source.Search(ctx, topic); err != nil {
			failed++
			w.logger.Warn().
				Err(err).
				Str("topic", topic).
				Str("event", "warm.topic_failed").
				Msg("failed to warm topic")
		}
	}

	outcome := "ok"
	if failed > 0 {
		outcome = "error"
	}
	metrics.RecordWarmCycle(outcome)

	w.logger.Debug().
		Int("topics", len(topics)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Str("event", "warm.cycle_complete").
		Msg("cache warm cycle complete")
}
