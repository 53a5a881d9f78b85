package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"HostPulse/internal/domain/models"
	icache "HostPulse/internal/service/cache"
)

type stubSource struct {
	props    []models.Property
	resv     []models.Reservation
	channels []models.ChannelStatus
	activity []models.ActivityEvent

	propsErr    error
	resvErr     error
	channelsErr error
	activityErr error
}

func (s stubSource) Properties(context.Context, string) ([]models.Property, error) {
	return s.props, s.propsErr
}

func (s stubSource) Reservations(context.Context, string) ([]models.Reservation, error) {
	return s.resv, s.resvErr
}

func (s stubSource) Channels(context.Context, string) ([]models.ChannelStatus, error) {
	return s.channels, s.channelsErr
}

func (s stubSource) Activity(context.Context, string, int) ([]models.ActivityEvent, error) {
	return s.activity, s.activityErr
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestAggregator(source stubSource) *DashboardAggregator {
	a := NewDashboardAggregator(source, nil, icache.NewSnapshotCache(), time.Minute, nil, nil)
	a.SetClock(func() time.Time { return testNow })
	return a
}

func fullSource() stubSource {
	return stubSource{
		props: []models.Property{
			{ID: "p1", Active: true},
			{ID: "p2", Active: true},
			{ID: "p3", Active: false},
		},
		resv: []models.Reservation{
			{PropertyID: "p1", Status: "confirmed", CheckIn: testNow.AddDate(0, 0, -1), CheckOut: testNow.AddDate(0, 0, 2), Total: 300},
			{PropertyID: "p2", Status: "confirmed", CheckIn: testNow.AddDate(0, 0, -40), CheckOut: testNow.AddDate(0, 0, -38), Total: 500},
			{PropertyID: "p2", Status: "cancelled", CheckIn: testNow, CheckOut: testNow.AddDate(0, 0, 1), Total: 900},
		},
		channels: []models.ChannelStatus{
			{Channel: "direct", Connected: true},
			{Channel: "booking", Connected: false},
		},
		activity: []models.ActivityEvent{{ID: "a1", OwnerID: "alice", Kind: "reservation_created"}},
	}
}

func TestDashboardSnapshotAggregation(t *testing.T) {
	a := newTestAggregator(fullSource())

	snap, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Degraded) != 0 {
		t.Fatalf("unexpected degraded sections: %v", snap.Degraded)
	}
	if snap.Properties.Total != 3 || snap.Properties.Active != 2 {
		t.Fatalf("property stats %+v", snap.Properties)
	}
	if snap.Properties.OccupiedToday != 1 {
		t.Fatalf("occupied today = %d, want 1", snap.Properties.OccupiedToday)
	}
	// cancelled reservations never count toward revenue
	if snap.Revenue.Reservations != 2 {
		t.Fatalf("reservations = %d, want 2", snap.Revenue.Reservations)
	}
	if snap.Revenue.Today != 0 {
		t.Fatalf("today revenue = %v, want 0 (check-in was yesterday)", snap.Revenue.Today)
	}
	if snap.Revenue.Month != 300 {
		t.Fatalf("month revenue = %v, want 300", snap.Revenue.Month)
	}
	if snap.Revenue.Year != 800 {
		t.Fatalf("year revenue = %v, want 800", snap.Revenue.Year)
	}
	if len(snap.Alerts) != 1 {
		t.Fatalf("alerts = %+v, want 1 for disconnected channel", snap.Alerts)
	}
	if len(snap.Activity) != 1 {
		t.Fatalf("activity = %+v, want 1 entry", snap.Activity)
	}
}

func TestDashboardDegradesFailedSections(t *testing.T) {
	source := fullSource()
	source.channelsErr = errors.New("channel service down")
	a := newTestAggregator(source)

	snap, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("aggregation must not fail on one bad source: %v", err)
	}

	// channels feed both the channels and alerts sections
	want := map[string]bool{"alerts": true, "channels": true}
	for _, section := range snap.Degraded {
		if !want[section] {
			t.Fatalf("unexpected degraded section %q in %v", section, snap.Degraded)
		}
		delete(want, section)
	}
	if len(want) != 0 {
		t.Fatalf("missing degraded sections: %v (got %v)", want, snap.Degraded)
	}
	if len(snap.Channels) != 0 {
		t.Fatalf("degraded channels section not zeroed: %+v", snap.Channels)
	}
	// untouched sections still aggregate
	if snap.Properties.Total != 3 {
		t.Fatalf("property stats lost: %+v", snap.Properties)
	}
}

func TestDashboardAllSourcesDown(t *testing.T) {
	boom := errors.New("backoffice down")
	a := newTestAggregator(stubSource{
		propsErr:    boom,
		resvErr:     boom,
		channelsErr: boom,
		activityErr: boom,
	})

	snap, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("snapshot must render even with everything down: %v", err)
	}
	if len(snap.Degraded) != 5 {
		t.Fatalf("degraded = %v, want all 5 sections", snap.Degraded)
	}
	if snap.Properties.Total != 0 || snap.Revenue.Year != 0 {
		t.Fatalf("degraded sections not zeroed: %+v", snap)
	}
}

func TestDashboardServedFromCacheWithinTTL(t *testing.T) {
	a := newTestAggregator(fullSource())

	first, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first snapshot should be fresh")
	}

	second, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second snapshot should come from cache")
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatalf("cached snapshot regenerated: %v vs %v", second.GeneratedAt, first.GeneratedAt)
	}
}

func TestDashboardPrefersKafkaFedActivity(t *testing.T) {
	feed := NewActivityFeed(10)
	feed.Add(models.ActivityEvent{ID: "fresh", OwnerID: "alice", Kind: "reservation_created"})

	a := NewDashboardAggregator(fullSource(), feed, icache.NewSnapshotCache(), time.Minute, nil, nil)
	a.SetClock(func() time.Time { return testNow })

	snap, err := a.DashboardData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Activity) != 1 || snap.Activity[0].ID != "fresh" {
		t.Fatalf("expected feed-backed activity, got %+v", snap.Activity)
	}
}
