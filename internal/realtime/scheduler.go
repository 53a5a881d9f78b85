package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"HostPulse/internal/domain/models"
	applogger "HostPulse/pkg/logger"
)

// DashboardProvider produces one dashboard snapshot per account.
type DashboardProvider interface {
	DashboardData(ctx context.Context, ownerID string) (models.DashboardSnapshot, error)
}

// Scheduler periodically refreshes dashboard metrics and pushes them to
// subscribed connections. It owns no connection state; ticks with zero
// connections are cheap skips.
type Scheduler struct {
	registry   *Registry
	dashboards DashboardProvider
	interval   time.Duration
	logger     *applogger.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	startedAt time.Time
}

func NewScheduler(registry *Registry, dashboards DashboardProvider, interval time.Duration, logger *applogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 8 * time.Second
	}
	return &Scheduler{
		registry:   registry,
		dashboards: dashboards,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the broadcast loop. Calling it twice has no effect.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.startedAt = time.Now()
		s.started.Store(true)
		go s.run()
	})
}

// Stop cancels the loop and waits for the in-flight tick to finish.
// Idempotent.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	if s.registry.Len() == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	// Only owners with a dashboard subscriber get a refresh; delivery is
	// subscription-gated so connections that never subscribed stay quiet.
	for _, owner := range s.registry.OwnersSubscribed(TopicDashboard) {
		snap, err := s.dashboards.DashboardData(ctx, owner)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("scheduled dashboard refresh failed",
					applogger.String("owner", owner),
					applogger.Error(err),
				)
			}
			continue
		}
		s.registry.BroadcastToOwnerTopic(owner, TopicDashboard, snap)
	}

	s.registry.Broadcast(TopicSystemStatus, map[string]any{
		"connections": s.registry.Len(),
		"uptime_s":    int(time.Since(s.startedAt).Seconds()),
	})
}
