// SPDX-License-Identifier: MIT

package pack

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/pendel/internal/log"
)

// Observability attribute keys. Frozen: dashboards and alerts key on these.
const (
	AttrEndpoint  = "pendel.pack.endpoint"
	AttrOutcome   = "pendel.pack.outcome"
	AttrStrategy  = "pendel.pack.strategy"
	AttrRequestID = "pendel.requestId"
)

// Outcome values reported per invocation.
const (
	OutcomeOK          = "ok"
	OutcomeUnderFilled = "under_filled"
	OutcomeEmptyPool   = "empty_pool"
	OutcomeNoFit       = "no_fit"
)

var allowedAttributes = map[string]bool{
	AttrEndpoint:  true,
	AttrOutcome:   true,
	AttrStrategy:  true,
	AttrRequestID: true,
}

var allowedOutcomes = map[string]bool{
	OutcomeOK:          true,
	OutcomeUnderFilled: true,
	OutcomeEmptyPool:   true,
	OutcomeNoFit:       true,
}

var allowedStrategies = map[string]bool{
	StrategyLongestFirst:  true,
	StrategyShortestFirst: true,
	StrategyCreatorAware:  true,
	StrategyRecencyFirst:  true,
}

// Obs is one engine invocation as seen by telemetry.
type Obs struct {
	Endpoint  string
	Outcome   string
	Strategy  string
	RequestID string
}

// EmitPackObs records metrics for one invocation and sets the span
// attributes, enforcing the strict attribute whitelist. Attributes outside
// the whitelist abort emission rather than leak into telemetry.
func EmitPackObs(ctx context.Context, obs Obs) {
	span := trace.SpanFromContext(ctx)

	// Runtime provider lookup; never bind the meter at init time.
	meter := otel.GetMeterProvider().Meter("pendel.pack")

	outcome := normalizeValue(obs.Outcome, allowedOutcomes)
	packTotal, _ := meter.Int64Counter("pendel_pack_total",
		metric.WithDescription("Total pack engine invocations"))
	packTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", obs.Endpoint),
		attribute.String("outcome", outcome),
	))

	attrs := []attribute.KeyValue{
		attribute.String(AttrEndpoint, obs.Endpoint),
		attribute.String(AttrOutcome, outcome),
		attribute.String(AttrRequestID, obs.RequestID),
	}

	if obs.Strategy != "" {
		strategy := normalizeValue(obs.Strategy, allowedStrategies)
		winTotal, _ := meter.Int64Counter("pendel_strategy_win_total",
			metric.WithDescription("Total wins per packing strategy"))
		winTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("strategy", strategy),
		))
		attrs = append(attrs, attribute.String(AttrStrategy, strategy))
	}

	for _, kv := range attrs {
		if !allowedAttributes[string(kv.Key)] {
			logger := log.WithComponent("pack")
			logger.Error().
				Str("key", string(kv.Key)).
				Msg("observability attribute outside whitelist, dropping emission")
			return
		}
	}

	span.SetAttributes(attrs...)
}

// StartPackSpan opens the engine span via runtime tracer lookup.
func StartPackSpan(ctx context.Context) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("pendel.pack")
	return tracer.Start(ctx, "pendel.pack")
}

func normalizeValue(v string, allowed map[string]bool) string {
	if allowed[v] {
		return v
	}
	return "unknown"
}
