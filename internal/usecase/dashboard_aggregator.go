package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	icache "HostPulse/internal/service/cache"
	applogger "HostPulse/pkg/logger"
)

const activityLimit = 20

// DashboardAggregator builds one consistent dashboard snapshot per account.
// Sub-aggregations run concurrently and each degrades to zeroed defaults on
// failure, so one unavailable data source never blanks the dashboard.
type DashboardAggregator struct {
	source  domrepo.DashboardSource
	feed    *ActivityFeed
	cache   *icache.SnapshotCache
	ttl     time.Duration
	metrics domrepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

// NewDashboardAggregator creates the aggregator. feed may be nil when the
// Kafka activity stream is disabled.
func NewDashboardAggregator(source domrepo.DashboardSource, feed *ActivityFeed, cache *icache.SnapshotCache, ttl time.Duration, metrics domrepo.Metrics, logger *applogger.Logger) *DashboardAggregator {
	return &DashboardAggregator{
		source:  source,
		feed:    feed,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the aggregator clock for tests.
func (a *DashboardAggregator) SetClock(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// DashboardData returns the snapshot for an account, served from the
// snapshot cache within its TTL.
func (a *DashboardAggregator) DashboardData(ctx context.Context, ownerID string) (models.DashboardSnapshot, error) {
	key := "dashboard:" + ownerID
	v, fromCache, err := a.cache.GetOrCompute(ctx, key, a.ttl, func(ctx context.Context) (any, error) {
		return a.build(ctx, ownerID), nil
	})
	if err != nil {
		return models.DashboardSnapshot{}, err
	}
	if a.metrics != nil {
		a.metrics.RecordCache("dashboard", fromCache)
	}
	snap, ok := v.(models.DashboardSnapshot)
	if !ok {
		return models.DashboardSnapshot{}, fmt.Errorf("dashboard cache: unexpected payload type %T", v)
	}
	snap.FromCache = fromCache
	return snap, nil
}

// build fans out to the independent sub-aggregations. It never fails: every
// section recovers into its zero value and is listed in Degraded.
func (a *DashboardAggregator) build(ctx context.Context, ownerID string) models.DashboardSnapshot {
	snap := models.DashboardSnapshot{
		OwnerID:     ownerID,
		GeneratedAt: a.now(),
		Channels:    []models.ChannelStatus{},
		Activity:    []models.ActivityEvent{},
		Alerts:      []models.Alert{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	degraded := func(section string, err any) {
		mu.Lock()
		snap.Degraded = append(snap.Degraded, section)
		mu.Unlock()
		if a.metrics != nil {
			a.metrics.RecordError("dashboard_" + section)
		}
		if a.logger != nil {
			a.logger.Warn("dashboard section degraded",
				applogger.String("owner", ownerID),
				applogger.String("section", section),
				applogger.Any("cause", err),
			)
		}
	}

	section := func(name string, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					degraded(name, r)
				}
			}()
			if err := fn(ctx); err != nil {
				degraded(name, err)
			}
		}()
	}

	section("properties", func(ctx context.Context) error {
		stats, err := a.propertyStats(ctx, ownerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Properties = stats
		mu.Unlock()
		return nil
	})

	section("revenue", func(ctx context.Context) error {
		stats, err := a.revenueStats(ctx, ownerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Revenue = stats
		mu.Unlock()
		return nil
	})

	section("channels", func(ctx context.Context) error {
		channels, err := a.source.Channels(ctx, ownerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Channels = channels
		mu.Unlock()
		return nil
	})

	section("activity", func(ctx context.Context) error {
		events, err := a.recentActivity(ctx, ownerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Activity = events
		mu.Unlock()
		return nil
	})

	section("alerts", func(ctx context.Context) error {
		alerts, err := a.alerts(ctx, ownerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Alerts = alerts
		mu.Unlock()
		return nil
	})

	wg.Wait()
	sort.Strings(snap.Degraded)
	return snap
}

func (a *DashboardAggregator) propertyStats(ctx context.Context, ownerID string) (models.PropertyStats, error) {
	props, err := a.source.Properties(ctx, ownerID)
	if err != nil {
		return models.PropertyStats{}, err
	}
	stats := models.PropertyStats{Total: len(props)}
	for _, p := range props {
		if p.Active {
			stats.Active++
		}
	}

	// Occupancy needs reservations; a failure here degrades only the
	// occupancy figures, not the counts.
	reservations, err := a.source.Reservations(ctx, ownerID)
	if err != nil {
		return stats, nil
	}
	today := a.now()
	occupied := make(map[string]struct{})
	for _, r := range reservations {
		if r.Status != "confirmed" {
			continue
		}
		if !today.Before(r.CheckIn) && today.Before(r.CheckOut) {
			occupied[r.PropertyID] = struct{}{}
		}
	}
	stats.OccupiedToday = len(occupied)
	if stats.Active > 0 {
		stats.OccupancyRate = float64(stats.OccupiedToday) / float64(stats.Active)
	}
	return stats, nil
}

func (a *DashboardAggregator) revenueStats(ctx context.Context, ownerID string) (models.RevenueStats, error) {
	reservations, err := a.source.Reservations(ctx, ownerID)
	if err != nil {
		return models.RevenueStats{}, err
	}
	now := a.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	var stats models.RevenueStats
	for _, r := range reservations {
		if r.Status != "confirmed" {
			continue
		}
		stats.Reservations++
		if !r.CheckIn.Before(yearStart) {
			stats.Year += r.Total
		}
		if !r.CheckIn.Before(monthStart) {
			stats.Month += r.Total
		}
		if !r.CheckIn.Before(weekStart) {
			stats.Week += r.Total
		}
		if !r.CheckIn.Before(dayStart) {
			stats.Today += r.Total
		}
	}
	return stats, nil
}

func (a *DashboardAggregator) recentActivity(ctx context.Context, ownerID string) ([]models.ActivityEvent, error) {
	// The Kafka-fed feed is fresher than the backoffice endpoint; use it
	// when it has entries for this account.
	if a.feed != nil {
		if events := a.feed.Recent(ownerID, activityLimit); len(events) > 0 {
			return events, nil
		}
	}
	return a.source.Activity(ctx, ownerID, activityLimit)
}

func (a *DashboardAggregator) alerts(ctx context.Context, ownerID string) ([]models.Alert, error) {
	channels, err := a.source.Channels(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	alerts := make([]models.Alert, 0, len(channels))
	for _, ch := range channels {
		if !ch.Connected {
			alerts = append(alerts, models.Alert{
				Severity: "warning",
				Message:  fmt.Sprintf("channel %s is disconnected", ch.Channel),
				At:       a.now(),
			})
		}
	}
	return alerts, nil
}
