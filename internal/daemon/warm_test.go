// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ManuGH/pendel/internal/catalog"
	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/log"
)

// countingSource records every warmed topic.
type countingSource struct {
	mu      sync.Mutex
	topics  []string
	failFor string
}

func (s *countingSource) Search(_ context.Context, topic string) ([]catalog.Video, error) {
	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()
	if topic == s.failFor {
		return nil, errors.New("upstream down")
	}
	return nil, nil
}

func (s *countingSource) Trending(context.Context) ([]string, error) { return nil, nil }

func (s *countingSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics)
}

func warmConfig(topics []string, interval time.Duration) func() *config.AppConfig {
	cfg := config.AppConfig{
		Warm: config.WarmSettings{Topics: topics, Interval: interval},
	}
	return func() *config.AppConfig { return &cfg }
}

func runWarmer(t *testing.T, w *Warmer) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return func() {
		cancelCtx()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("warmer did not stop after cancellation")
		}
	}
}

func TestWarmer_WarmsConfiguredTopics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	src := &countingSource{}
	w := NewWarmer(src, warmConfig([]string{"go", "rust"}, 10*time.Millisecond), log.WithComponent("test"))

	stop := runWarmer(t, w)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for src.calls() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if src.calls() < 4 {
		t.Fatalf("expected at least two warm cycles, got %d calls", src.calls())
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	seen := map[string]bool{}
	for _, topic := range src.topics {
		seen[topic] = true
	}
	if !seen["go"] || !seen["rust"] {
		t.Errorf("expected both topics warmed, saw %v", src.topics)
	}
}

func TestWarmer_KeepsGoingOnFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	src := &countingSource{failFor: "go"}
	w := NewWarmer(src, warmConfig([]string{"go", "rust"}, 10*time.Millisecond), log.WithComponent("test"))

	stop := runWarmer(t, w)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for src.calls() < 6 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if src.calls() < 6 {
		t.Fatalf("warmer should survive upstream failures, got %d calls", src.calls())
	}
}

func TestWarmer_IdlesWithoutTopics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	src := &countingSource{}
	w := NewWarmer(src, warmConfig(nil, 10*time.Millisecond), log.WithComponent("test"))

	stop := runWarmer(t, w)
	time.Sleep(50 * time.Millisecond)
	stop()

	if src.calls() != 0 {
		t.Errorf("expected no catalog calls without topics, got %d", src.calls())
	}
}
