package pricing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"HostPulse/internal/domain/models"
)

type stubPriceSource struct {
	base    float64
	comps   []float64
	baseErr error
	compErr error
}

func (s stubPriceSource) BasePrice(context.Context, string) (float64, error) {
	return s.base, s.baseErr
}

func (s stubPriceSource) CompetitorPrices(context.Context, string, time.Time) ([]float64, error) {
	return s.comps, s.compErr
}

type stubHistory struct {
	points []models.PerformancePoint
	err    error
}

func (s stubHistory) Performance(context.Context, string, time.Time) ([]models.PerformancePoint, error) {
	return s.points, s.err
}

type stubEvents struct {
	events []models.LocalEvent
	err    error
}

func (s stubEvents) LocalEvents(context.Context, string, time.Time) ([]models.LocalEvent, error) {
	return s.events, s.err
}

func newFactors(prices stubPriceSource, history stubHistory, events stubEvents) *StandardFactors {
	f := NewStandardFactors(prices, history, events, nil)
	f.SetNoise(func() float64 { return 0 })
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonalBuckets(t *testing.T) {
	f := newFactors(stubPriceSource{}, stubHistory{}, stubEvents{})

	cases := []struct {
		date time.Time
		want float64
	}{
		{day(2026, time.July, 15), 1.3},    // Wednesday, high season
		{day(2026, time.May, 13), 1.1},     // Wednesday, mid season
		{day(2026, time.January, 14), 0.85}, // Wednesday, low season
		{day(2026, time.July, 17), 1.3 * 1.15}, // Friday, high season + weekend
		{day(2026, time.January, 17), 0.85 * 1.15}, // Saturday, low season + weekend
	}
	for _, tc := range cases {
		if got := f.Seasonal(tc.date); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Seasonal(%v) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestDemandLeadTimeCurve(t *testing.T) {
	f := newFactors(stubPriceSource{}, stubHistory{}, stubEvents{})
	now := day(2026, time.March, 1)

	cases := []struct {
		lead int
		want float64
	}{
		{3, 1.25},
		{20, 1.10},
		{45, 1.00},
		{100, 0.95},
	}
	for _, tc := range cases {
		got := f.Demand(now, now.AddDate(0, 0, tc.lead))
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Demand lead=%d = %v, want %v", tc.lead, got, tc.want)
		}
	}
}

func TestDemandNoiseStaysInBounds(t *testing.T) {
	now := day(2026, time.March, 1)
	for _, noise := range []float64{-1, -0.5, 0, 0.5, 1} {
		f := newFactors(stubPriceSource{}, stubHistory{}, stubEvents{})
		f.SetNoise(func() float64 { return noise })
		for _, lead := range []int{1, 10, 40, 120} {
			got := f.Demand(now, now.AddDate(0, 0, lead))
			if got < 0.7 || got > 1.5 {
				t.Fatalf("Demand(noise=%v, lead=%d) = %v out of [0.7, 1.5]", noise, lead, got)
			}
		}
	}
}

func TestCompetitionTiers(t *testing.T) {
	cases := []struct {
		comps []float64
		want  float64
	}{
		{[]float64{130}, 1.15},
		{[]float64{110}, 1.05},
		{[]float64{100}, 1.0},
		{[]float64{70}, 0.9},
		{nil, 1.0},
	}
	for _, tc := range cases {
		f := newFactors(stubPriceSource{base: 100, comps: tc.comps}, stubHistory{}, stubEvents{})
		if got := f.Competition(context.Background(), "p1", time.Now()); got != tc.want {
			t.Fatalf("Competition(comps=%v) = %v, want %v", tc.comps, got, tc.want)
		}
	}
}

func TestCompetitionDegradesToNeutral(t *testing.T) {
	f := newFactors(stubPriceSource{base: 100, compErr: errors.New("down")}, stubHistory{}, stubEvents{})
	if got := f.Competition(context.Background(), "p1", time.Now()); got != 1.0 {
		t.Fatalf("Competition on error = %v, want neutral 1.0", got)
	}

	f = newFactors(stubPriceSource{baseErr: errors.New("down")}, stubHistory{}, stubEvents{})
	if got := f.Competition(context.Background(), "p1", time.Now()); got != 1.0 {
		t.Fatalf("Competition on base error = %v, want neutral 1.0", got)
	}
}

func TestHistoricalTiers(t *testing.T) {
	points := func(occ float64) []models.PerformancePoint {
		return []models.PerformancePoint{{Occupancy: occ}, {Occupancy: occ}}
	}
	cases := []struct {
		points []models.PerformancePoint
		want   float64
	}{
		{points(0.9), 1.1},
		{points(0.6), 1.0},
		{points(0.4), 0.9},
		{nil, 1.0},
	}
	for _, tc := range cases {
		f := newFactors(stubPriceSource{}, stubHistory{points: tc.points}, stubEvents{})
		if got := f.Historical(context.Background(), "p1", time.Now()); got != tc.want {
			t.Fatalf("Historical(%v) = %v, want %v", tc.points, got, tc.want)
		}
	}
}

func TestHistoricalDegradesToNeutral(t *testing.T) {
	f := newFactors(stubPriceSource{}, stubHistory{err: errors.New("down")}, stubEvents{})
	if got := f.Historical(context.Background(), "p1", time.Now()); got != 1.0 {
		t.Fatalf("Historical on error = %v, want neutral 1.0", got)
	}
}

func TestEventsStackAndCap(t *testing.T) {
	f := newFactors(stubPriceSource{}, stubHistory{}, stubEvents{events: []models.LocalEvent{
		{Name: "festival", Impact: "high"},
		{Name: "fair", Impact: "medium"},
	}})
	if got := f.Events(context.Background(), "p1", time.Now()); math.Abs(got-1.4*1.2) > 1e-9 {
		t.Fatalf("Events = %v, want %v", got, 1.4*1.2)
	}

	f = newFactors(stubPriceSource{}, stubHistory{}, stubEvents{events: []models.LocalEvent{
		{Impact: "high"}, {Impact: "high"}, {Impact: "high"},
	}})
	if got := f.Events(context.Background(), "p1", time.Now()); got != 2.0 {
		t.Fatalf("Events = %v, want cap 2.0", got)
	}
}

func TestEventsDegradeToNeutral(t *testing.T) {
	f := newFactors(stubPriceSource{}, stubHistory{}, stubEvents{err: errors.New("down")})
	if got := f.Events(context.Background(), "p1", time.Now()); got != 1.0 {
		t.Fatalf("Events on error = %v, want neutral 1.0", got)
	}
}
