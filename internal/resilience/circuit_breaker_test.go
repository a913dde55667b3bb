// SPDX-License-Identifier: MIT

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errUpstream = errors.New("upstream down")

func failing() error { return errUpstream }
func passing() error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("catalog", 3, 30*time.Second, WithClock(clock))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, failing)
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, string(StateOpen), cb.State())

	// While open, calls fail fast without running fn.
	ran := false
	err := cb.Execute(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ran)
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("catalog", 1, 30*time.Second, WithClock(clock))

	ctx := context.Background()
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.Equal(t, string(StateOpen), cb.State())

	// After the reset timeout, one probe is admitted.
	clock.now = clock.now.Add(31 * time.Second)
	assert.NoError(t, cb.Execute(ctx, passing))
	assert.Equal(t, string(StateClosed), cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("catalog", 1, 30*time.Second, WithClock(clock))

	ctx := context.Background()
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)

	clock.now = clock.now.Add(31 * time.Second)
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.Equal(t, string(StateOpen), cb.State())

	// The fresh open period starts at the failed probe.
	err := cb.Execute(ctx, passing)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SingleProbeInHalfOpen(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("catalog", 1, 30*time.Second, WithClock(clock))

	ctx := context.Background()
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)

	clock.now = clock.now.Add(31 * time.Second)

	// First admit takes the probe slot and holds it while fn runs.
	release := make(chan struct{})
	probeStarted := make(chan struct{})
	probeDone := make(chan error, 1)
	go func() {
		probeDone <- cb.Execute(ctx, func() error {
			close(probeStarted)
			<-release
			return nil
		})
	}()

	<-probeStarted
	err := cb.Execute(ctx, passing)
	assert.ErrorIs(t, err, ErrProbeInFlight)

	close(release)
	assert.NoError(t, <-probeDone)
	assert.Equal(t, string(StateClosed), cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("catalog", 3, 30*time.Second, WithClock(clock))

	ctx := context.Background()
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.NoError(t, cb.Execute(ctx, passing))

	// Two more failures stay under the threshold after the reset.
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.ErrorIs(t, cb.Execute(ctx, failing), errUpstream)
	assert.Equal(t, string(StateClosed), cb.State())
}

func TestCircuitBreaker_CancelledContextFailsFast(t *testing.T) {
	cb := NewCircuitBreaker("catalog", 3, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := cb.Execute(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
	assert.Equal(t, string(StateClosed), cb.State())
}

func TestCircuitBreaker_DefaultsApplied(t *testing.T) {
	cb := NewCircuitBreaker("catalog", 0, 0)
	assert.Equal(t, 3, cb.threshold)
	assert.Equal(t, 30*time.Second, cb.resetTimeout)
}
