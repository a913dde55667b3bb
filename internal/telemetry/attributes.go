// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Pack attributes
	PackTopicKey       = "pack.topic"
	PackStrategyKey    = "pack.strategy"
	PackItemsKey       = "pack.items"
	PackTotalSecKey    = "pack.total_sec"
	PackWindowMinKey   = "pack.window_min_sec"
	PackWindowMaxKey   = "pack.window_max_sec"
	PackUnderFilledKey = "pack.under_filled"

	// Catalog attributes
	CatalogOperationKey  = "catalog.operation"
	CatalogCandidatesKey = "catalog.candidates"

	// Mastery attributes
	MasteryScoreKey = "mastery.score"
	MasteryFromKey  = "mastery.level_from"
	MasteryToKey    = "mastery.level_to"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// PackAttributes creates span attributes for one built pack.
func PackAttributes(topic, strategy string, items, totalSec int, underFilled bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(PackTopicKey, topic),
		attribute.Int(PackItemsKey, items),
		attribute.Int(PackTotalSecKey, totalSec),
		attribute.Bool(PackUnderFilledKey, underFilled),
	}
	if strategy != "" {
		attrs = append(attrs, attribute.String(PackStrategyKey, strategy))
	}
	return attrs
}

// WindowAttributes creates span attributes for a duration window.
func WindowAttributes(minSec, maxSec int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(PackWindowMinKey, minSec),
		attribute.Int(PackWindowMaxKey, maxSec),
	}
}

// CatalogAttributes creates span attributes for one catalog fetch.
func CatalogAttributes(operation string, candidates int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CatalogOperationKey, operation),
		attribute.Int(CatalogCandidatesKey, candidates),
	}
}

// MasteryAttributes creates span attributes for a difficulty adjustment.
func MasteryAttributes(score int, from, to string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(MasteryScoreKey, score),
		attribute.String(MasteryFromKey, from),
		attribute.String(MasteryToKey, to),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
