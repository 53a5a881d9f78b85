package pricing

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"HostPulse/internal/domain/models"
	pkgcache "HostPulse/pkg/cache"
)

type stubPrices struct {
	base float64
	err  error
}

func (s stubPrices) BasePrice(context.Context, string) (float64, error) {
	return s.base, s.err
}

func (s stubPrices) CompetitorPrices(context.Context, string, time.Time) ([]float64, error) {
	return nil, nil
}

type stubFactors struct {
	f models.PricingFactors
}

func (s stubFactors) Seasonal(time.Time) float64                           { return s.f.Seasonal }
func (s stubFactors) Demand(time.Time, time.Time) float64                  { return s.f.Demand }
func (s stubFactors) Competition(context.Context, string, time.Time) float64 { return s.f.Competition }
func (s stubFactors) Historical(context.Context, string, time.Time) float64  { return s.f.Historical }
func (s stubFactors) Events(context.Context, string, time.Time) float64      { return s.f.Events }

func neutralFactors() models.PricingFactors {
	return models.PricingFactors{Seasonal: 1, Demand: 1, Competition: 1, Historical: 1, Events: 1}
}

func newTestEngine(base float64, f models.PricingFactors) *Engine {
	return NewEngine(stubPrices{base: base}, stubFactors{f: f}, nil, 0, nil, nil)
}

func TestOptimalPriceWeightedMultiplier(t *testing.T) {
	f := neutralFactors()
	f.Seasonal = 1.3
	f.Demand = 1.25
	e := newTestEngine(100, f)

	rec, err := e.OptimalPrice(context.Background(), "p1", time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 + 0.25*0.3 + 0.30*0.25 = 1.15
	if rec.Multiplier != 1.15 {
		t.Fatalf("multiplier = %v, want 1.15", rec.Multiplier)
	}
	if rec.OptimizedPrice != 115 {
		t.Fatalf("price = %v, want 115", rec.OptimizedPrice)
	}
}

func TestOptimalPriceNeutralFactorsKeepBase(t *testing.T) {
	e := newTestEngine(100, neutralFactors())
	rec, err := e.OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Multiplier != 1.0 || rec.OptimizedPrice != 100 {
		t.Fatalf("got mult=%v price=%v, want 1.0 and 100", rec.Multiplier, rec.OptimizedPrice)
	}
}

func TestOptimalPriceClampCeiling(t *testing.T) {
	f := models.PricingFactors{Seasonal: 3, Demand: 3, Competition: 3, Historical: 3, Events: 3}
	e := newTestEngine(100, f)
	rec, err := e.OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OptimizedPrice != 200 {
		t.Fatalf("price = %v, want ceiling 200", rec.OptimizedPrice)
	}
}

func TestOptimalPriceClampFloor(t *testing.T) {
	f := models.PricingFactors{} // all zero
	e := newTestEngine(100, f)
	rec, err := e.OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OptimizedPrice != 70 {
		t.Fatalf("price = %v, want floor 70", rec.OptimizedPrice)
	}
}

func TestOptimalPriceRoundsToFiveAbove200(t *testing.T) {
	f := neutralFactors()
	f.Demand = 1.04 // mult 1.012, 300 -> 303.6
	e := newTestEngine(300, f)
	rec, err := e.OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OptimizedPrice != 305 {
		t.Fatalf("price = %v, want 305", rec.OptimizedPrice)
	}
	if math.Mod(rec.OptimizedPrice, 5) != 0 {
		t.Fatalf("price %v not a multiple of 5", rec.OptimizedPrice)
	}
}

func TestOptimalPriceBasePriceFailureIsFatal(t *testing.T) {
	e := NewEngine(stubPrices{err: errors.New("down")}, stubFactors{f: neutralFactors()}, nil, 0, nil, nil)
	if _, err := e.OptimalPrice(context.Background(), "p1", time.Now()); err == nil {
		t.Fatalf("expected error when base price is unavailable")
	}

	e = newTestEngine(0, neutralFactors())
	if _, err := e.OptimalPrice(context.Background(), "p1", time.Now()); err == nil {
		t.Fatalf("expected error for non-positive base price")
	}
}

func TestConfidenceBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		f := models.PricingFactors{
			Seasonal:    rng.Float64()*2 + 0.5,
			Demand:      rng.Float64()*2 + 0.5,
			Competition: rng.Float64()*2 + 0.5,
			Historical:  rng.Float64()*2 + 0.5,
			Events:      rng.Float64()*2 + 0.5,
		}
		e := newTestEngine(100, f)
		rec, err := e.OptimalPrice(context.Background(), "p1", time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Confidence < 0.1 || rec.Confidence > 0.95 {
			t.Fatalf("confidence %v out of [0.1, 0.95] for %+v", rec.Confidence, f)
		}
	}
}

func TestConfidenceBoostWithExternalData(t *testing.T) {
	base := neutralFactors()
	base.Seasonal = 1.1

	boosted := base
	boosted.Competition = 1.05
	boosted.Historical = 1.1

	recA, err := newTestEngine(100, base).OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recB, err := newTestEngine(100, boosted).OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recB.Confidence <= recA.Confidence {
		t.Fatalf("expected boost: %v <= %v", recB.Confidence, recA.Confidence)
	}
}

func TestEstimatedOccupancyTiers(t *testing.T) {
	cases := []struct {
		factor float64
		want   float64
	}{
		{1.3, 0.85},
		{1.0, 0.7},
		{0.8, 0.55},
	}
	for _, tc := range cases {
		f := models.PricingFactors{Seasonal: tc.factor, Demand: tc.factor, Competition: tc.factor, Historical: tc.factor, Events: tc.factor}
		rec, err := newTestEngine(100, f).OptimalPrice(context.Background(), "p1", time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.EstimatedOccupancy != tc.want {
			t.Fatalf("factor %v: occupancy = %v, want %v", tc.factor, rec.EstimatedOccupancy, tc.want)
		}
	}
}

func TestCombineFactorsFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		f := models.PricingFactors{
			Seasonal:    rng.Float64() * 2,
			Demand:      rng.Float64() * 2,
			Competition: rng.Float64() * 2,
			Historical:  rng.Float64() * 2,
			Events:      rng.Float64() * 2,
		}
		want := 1 + 0.25*(f.Seasonal-1) + 0.30*(f.Demand-1) + 0.20*(f.Competition-1) + 0.15*(f.Historical-1) + 0.10*(f.Events-1)
		if got := CombineFactors(f); math.Abs(got-want) > 1e-12 {
			t.Fatalf("CombineFactors(%+v) = %v, want %v", f, got, want)
		}
	}
}

func TestReportInclusiveRangeAndSummary(t *testing.T) {
	f := neutralFactors()
	f.Seasonal = 1.2
	e := newTestEngine(100, f)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)
	report, err := e.Report(context.Background(), "p1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Recommendations) != 7 {
		t.Fatalf("got %d recommendations, want 7", len(report.Recommendations))
	}
	if report.Summary.Count != 7 {
		t.Fatalf("summary count = %d, want 7", report.Summary.Count)
	}
	if report.Summary.MinPrice > report.Summary.MaxPrice {
		t.Fatalf("min %v > max %v", report.Summary.MinPrice, report.Summary.MaxPrice)
	}
	if report.Summary.AveragePrice < report.Summary.MinPrice || report.Summary.AveragePrice > report.Summary.MaxPrice {
		t.Fatalf("average %v outside [%v, %v]", report.Summary.AveragePrice, report.Summary.MinPrice, report.Summary.MaxPrice)
	}
}

func TestReportRejectsInvertedRange(t *testing.T) {
	e := newTestEngine(100, neutralFactors())
	from := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if _, err := e.Report(context.Background(), "p1", from, from.AddDate(0, 0, -1)); err == nil {
		t.Fatalf("expected error for to before from")
	}
}

func TestReportServedFromCache(t *testing.T) {
	e := NewEngine(stubPrices{base: 100}, stubFactors{f: neutralFactors()}, pkgcache.NewMemoryCache(), time.Minute, nil, nil)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)

	first, err := e.Report(context.Background(), "p1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first report should not come from cache")
	}

	second, err := e.Report(context.Background(), "p1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second report should come from cache")
	}
	if len(second.Recommendations) != len(first.Recommendations) {
		t.Fatalf("cached report differs: %d vs %d recommendations", len(second.Recommendations), len(first.Recommendations))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.AveragePrice != 0 || s.TotalRevenue != 0 {
		t.Fatalf("empty summary not zeroed: %+v", s)
	}
}

func TestNotesMentionLargeAdjustments(t *testing.T) {
	f := neutralFactors()
	f.Seasonal = 1.3
	f.Demand = 1.5
	f.Events = 1.4
	rec, err := newTestEngine(100, f).OptimalPrice(context.Background(), "p1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OptimizedPrice <= 110 {
		t.Fatalf("setup broken, price %v not above 110", rec.OptimizedPrice)
	}
	if len(rec.Notes) == 0 {
		t.Fatalf("expected notes for a large raise")
	}
}
