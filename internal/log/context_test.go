// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	ctx = ContextWithTopic(ctx, "calculus")

	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Fatalf("request id: got %q, want %q", got, "req-42")
	}
	if got := TopicFromContext(ctx); got != "calculus" {
		t.Fatalf("topic: got %q, want %q", got, "calculus")
	}
}

func TestContextMissingValues(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
	if got := RequestIDFromContext(nil); got != "" { //nolint:staticcheck // nil ctx is part of the contract
		t.Fatalf("expected empty request id for nil ctx, got %q", got)
	}
}

func TestWithContextEnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	base := Base().Output(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-7")
	ctx = ContextWithTopic(ctx, "algebra")

	enriched := WithContext(ctx, base)
	enriched.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("request_id: got %v, want req-7", entry["request_id"])
	}
	if entry["topic"] != "algebra" {
		t.Errorf("topic: got %v, want algebra", entry["topic"])
	}
}

func TestWithContextNoFieldsReturnsSame(t *testing.T) {
	t.Parallel()

	base := Base()
	got := WithContext(context.Background(), base)
	if got.GetLevel() != base.GetLevel() {
		t.Fatalf("logger level changed: got %v, want %v", got.GetLevel(), base.GetLevel())
	}
}
