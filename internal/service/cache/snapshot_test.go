package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrComputeCachesWithinTTL(t *testing.T) {
	c := NewSnapshotCache()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	computes := 0
	compute := func(context.Context) (any, error) {
		computes++
		return "payload", nil
	}

	v, fromCache, err := c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache || v != "payload" {
		t.Fatalf("first call: fromCache=%v v=%v", fromCache, v)
	}

	now = now.Add(30 * time.Second)
	v, fromCache, err = c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fromCache || v != "payload" {
		t.Fatalf("second call: fromCache=%v v=%v", fromCache, v)
	}
	if computes != 1 {
		t.Fatalf("compute ran %d times, want 1", computes)
	}
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	c := NewSnapshotCache()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	computes := 0
	compute := func(context.Context) (any, error) {
		computes++
		return computes, nil
	}

	if _, _, err := c.GetOrCompute(context.Background(), "k", time.Minute, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(61 * time.Second)
	v, fromCache, err := c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache {
		t.Fatalf("expired entry served from cache")
	}
	if v != 2 || computes != 2 {
		t.Fatalf("expected recompute, got v=%v computes=%d", v, computes)
	}
}

func TestGetOrComputeErrorNotStored(t *testing.T) {
	c := NewSnapshotCache()

	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed compute stored an entry")
	}

	v, fromCache, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return "ok", nil
	})
	if err != nil || fromCache || v != "ok" {
		t.Fatalf("recovery call: v=%v fromCache=%v err=%v", v, fromCache, err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	c := NewSnapshotCache()
	for _, key := range []string{"a", "b", "c"} {
		key := key
		_, _, err := c.GetOrCompute(context.Background(), key, time.Minute, func(context.Context) (any, error) {
			return key, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Clear left %d entries", c.Len())
	}
}
