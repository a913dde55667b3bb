// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerAllowsBurst(t *testing.T) {
	p := NewPacer(Config{RatePerSec: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !p.Allow("catalog") {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if p.Allow("catalog") {
		t.Fatal("request beyond burst should be throttled")
	}
}

func TestPacerSeparatesTargets(t *testing.T) {
	p := NewPacer(Config{RatePerSec: 1, Burst: 1})

	if !p.Allow("catalog") {
		t.Fatal("first catalog request should be allowed")
	}
	if p.Allow("catalog") {
		t.Fatal("second catalog request should be throttled")
	}
	// A different target has its own bucket.
	if !p.Allow("trending") {
		t.Fatal("first trending request should be allowed")
	}
}

func TestPacerWaitHonorsContext(t *testing.T) {
	p := NewPacer(Config{RatePerSec: 0.1, Burst: 1})

	if err := p.Wait(context.Background(), "catalog"); err != nil {
		t.Fatalf("first wait should pass immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Wait(ctx, "catalog")
	if err == nil {
		t.Fatal("expected context deadline error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("wait did not respect context deadline, took %v", elapsed)
	}
}

func TestPacerDefaultsApplied(t *testing.T) {
	p := NewPacer(Config{})
	def := DefaultConfig()
	if p.config.RatePerSec != def.RatePerSec {
		t.Errorf("RatePerSec = %v, want default %v", p.config.RatePerSec, def.RatePerSec)
	}
	if p.config.Burst != def.Burst {
		t.Errorf("Burst = %d, want default %d", p.config.Burst, def.Burst)
	}
}

func TestPacerReserveReportsDelay(t *testing.T) {
	p := NewPacer(Config{RatePerSec: 10, Burst: 1})

	if d := p.Reserve("catalog"); d != 0 {
		t.Fatalf("first reserve should be immediate, got %v", d)
	}
	if d := p.Reserve("catalog"); d <= 0 {
		t.Fatalf("second reserve should report a delay, got %v", d)
	}
}
