package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter() (*Limiter, *time.Time) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowDrainsBucket(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 3; i++ {
		if !l.Allow("conn-1", 3, 1) {
			t.Fatalf("request %d denied with tokens remaining", i)
		}
	}
	if l.Allow("conn-1", 3, 1) {
		t.Fatalf("request allowed on empty bucket")
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 2; i++ {
		l.Allow("conn-1", 2, 1)
	}
	if l.Allow("conn-1", 2, 1) {
		t.Fatalf("bucket should be empty")
	}

	*now = now.Add(1500 * time.Millisecond)
	if !l.Allow("conn-1", 2, 1) {
		t.Fatalf("expected refill after 1.5s at 1 token/s")
	}
	if l.Allow("conn-1", 2, 1) {
		t.Fatalf("only one token should have refilled")
	}
}

func TestAllowCapsAtCapacity(t *testing.T) {
	l, now := newTestLimiter()

	l.Allow("conn-1", 2, 10)
	*now = now.Add(time.Minute)

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("conn-1", 2, 10) {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed %d after long idle, want capacity 2", allowed)
	}
}

func TestLimiterIsolatesKeys(t *testing.T) {
	l, _ := newTestLimiter()

	l.Allow("conn-1", 1, 1)
	if l.Allow("conn-1", 1, 1) {
		t.Fatalf("conn-1 should be drained")
	}
	if !l.Allow("conn-2", 1, 1) {
		t.Fatalf("conn-2 should have its own bucket")
	}

	l.Forget("conn-1")
	if !l.Allow("conn-1", 1, 1) {
		t.Fatalf("forgotten key should start with a full bucket")
	}
}
