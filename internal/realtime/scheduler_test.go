package realtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"HostPulse/internal/domain/models"
)

type fakeDashboards struct {
	calls atomic.Int64
}

func (f *fakeDashboards) DashboardData(_ context.Context, ownerID string) (models.DashboardSnapshot, error) {
	f.calls.Add(1)
	return models.DashboardSnapshot{OwnerID: ownerID}, nil
}

func TestSchedulerPushesPerOwnerSnapshots(t *testing.T) {
	r := newTestRegistry()
	_, s := authedConn(t, r, "tok-alice", TopicDashboard)

	dashboards := &fakeDashboards{}
	sched := NewScheduler(r, dashboards, 20*time.Millisecond, nil)
	sched.Start()
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.byType("update")) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if dashboards.calls.Load() == 0 {
		t.Fatalf("scheduler never refreshed dashboards")
	}
	var sawDashboard, sawStatus bool
	for _, m := range s.byType("update") {
		switch m.Topic {
		case TopicDashboard:
			sawDashboard = true
		case TopicSystemStatus:
			sawStatus = true
		}
	}
	if !sawDashboard {
		t.Fatalf("no dashboard update pushed")
	}
	// system_status goes to its subscribers only; this conn is not one
	if sawStatus {
		t.Fatalf("system status pushed to non-subscriber")
	}
}

func TestSchedulerSkipsUnsubscribedConnections(t *testing.T) {
	r := newTestRegistry()
	// Authenticated but never subscribed to anything.
	_, s := authedConn(t, r, "tok-alice")

	dashboards := &fakeDashboards{}
	sched := NewScheduler(r, dashboards, 10*time.Millisecond, nil)
	sched.Start()
	time.Sleep(80 * time.Millisecond)
	sched.Stop()

	if n := dashboards.calls.Load(); n != 0 {
		t.Fatalf("dashboards refreshed %d times with no dashboard subscriber", n)
	}
	if got := len(s.byType("update")); got != 0 {
		t.Fatalf("unsubscribed connection got %d updates, want 0", got)
	}
}

func TestSchedulerSkipsWithoutConnections(t *testing.T) {
	r := newTestRegistry()
	dashboards := &fakeDashboards{}
	sched := NewScheduler(r, dashboards, 10*time.Millisecond, nil)
	sched.Start()
	time.Sleep(60 * time.Millisecond)
	sched.Stop()

	if n := dashboards.calls.Load(); n != 0 {
		t.Fatalf("dashboards refreshed %d times with zero connections", n)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	sched := NewScheduler(r, &fakeDashboards{}, time.Second, nil)
	sched.Start()
	sched.Stop()
	sched.Stop()
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	r := newTestRegistry()
	sched := NewScheduler(r, &fakeDashboards{}, time.Second, nil)

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop without Start blocked")
	}
}
