package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	domsvc "HostPulse/internal/domain/service"
	pkgcache "HostPulse/pkg/cache"
	applogger "HostPulse/pkg/logger"
)

// Factor weights. They scale each factor's deviation from neutral and sum
// to 1.0.
const (
	weightSeasonal    = 0.25
	weightDemand      = 0.30
	weightCompetition = 0.20
	weightHistorical  = 0.15
	weightEvents      = 0.10
)

// Price clamp bounds relative to the base price.
const (
	clampFloor = 0.7
	clampCeil  = 2.0
)

// Engine produces per-day price recommendations and range reports.
type Engine struct {
	prices    domrepo.PriceSource
	factors   domsvc.FactorProvider
	cache     pkgcache.Service
	reportTTL time.Duration
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	now       func() time.Time
}

// NewEngine creates a pricing engine. cache may be nil to disable report
// caching.
func NewEngine(prices domrepo.PriceSource, factors domsvc.FactorProvider, cache pkgcache.Service, reportTTL time.Duration, metrics domrepo.Metrics, logger *applogger.Logger) *Engine {
	return &Engine{
		prices:    prices,
		factors:   factors,
		cache:     cache,
		reportTTL: reportTTL,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the engine clock. Tests pin it.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// OptimalPrice computes one recommendation for a property and date. Only a
// base-price failure fails the call; every factor degrades to neutral on its
// own.
func (e *Engine) OptimalPrice(ctx context.Context, propertyID string, date time.Time) (models.PriceRecommendation, error) {
	start := e.now()

	base, err := e.prices.BasePrice(ctx, propertyID)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordError("base_price")
		}
		return models.PriceRecommendation{}, fmt.Errorf("base price for %s: %w", propertyID, err)
	}
	if base <= 0 {
		if e.metrics != nil {
			e.metrics.RecordError("base_price")
		}
		return models.PriceRecommendation{}, fmt.Errorf("base price for %s: non-positive value %v", propertyID, base)
	}

	factors := models.PricingFactors{
		Seasonal:    e.factors.Seasonal(date),
		Demand:      e.factors.Demand(start, date),
		Competition: e.factors.Competition(ctx, propertyID, date),
		Historical:  e.factors.Historical(ctx, propertyID, date),
		Events:      e.factors.Events(ctx, propertyID, date),
	}

	multiplier := CombineFactors(factors)
	raw := math.Round(base * multiplier)
	final := applyPriceRules(raw, base)
	confidence := confidenceFor(factors)
	occupancy := estimatedOccupancy(factors)

	rec := models.PriceRecommendation{
		Date:               date,
		BasePrice:          base,
		OptimizedPrice:     final,
		Multiplier:         round4(multiplier),
		Factors:            factors,
		Confidence:         round4(confidence),
		EstimatedOccupancy: occupancy,
		PotentialRevenue:   round2(final * occupancy),
		Notes:              buildNotes(final, base, factors),
	}

	if e.metrics != nil {
		e.metrics.RecordLatency("pricing_optimal", time.Since(start).Seconds())
	}
	return rec, nil
}

// Report computes recommendations for every calendar day in the inclusive
// range and attaches summary statistics. Results are cached per
// (property, from, to) with the report TTL.
func (e *Engine) Report(ctx context.Context, propertyID string, from, to time.Time) (models.PricingReport, error) {
	if to.Before(from) {
		return models.PricingReport{}, errors.New("report: to before from")
	}

	key := pkgcache.GenerateKeyWithParams("pricing:report", propertyID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if e.cache != nil {
		var cached models.PricingReport
		if err := e.cache.Get(ctx, key, &cached); err == nil {
			cached.FromCache = true
			if e.metrics != nil {
				e.metrics.RecordCache("pricing_report", true)
			}
			return cached, nil
		}
		if e.metrics != nil {
			e.metrics.RecordCache("pricing_report", false)
		}
	}

	recs := make([]models.PriceRecommendation, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		rec, err := e.OptimalPrice(ctx, propertyID, d)
		if err != nil {
			return models.PricingReport{}, err
		}
		recs = append(recs, rec)
	}

	report := models.PricingReport{
		PropertyID:      propertyID,
		From:            from,
		To:              to,
		Recommendations: recs,
		Summary:         Summarize(recs),
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, report, e.reportTTL); err != nil && e.logger != nil {
			e.logger.Warn("pricing report cache set failed", applogger.Error(err))
		}
	}
	return report, nil
}

// CombineFactors applies the fixed weights to each factor's deviation from
// neutral: multiplier = 1 + sum(w_i * (f_i - 1)).
func CombineFactors(f models.PricingFactors) float64 {
	return 1 +
		weightSeasonal*(f.Seasonal-1) +
		weightDemand*(f.Demand-1) +
		weightCompetition*(f.Competition-1) +
		weightHistorical*(f.Historical-1) +
		weightEvents*(f.Events-1)
}

// Summarize computes range statistics over a recommendation list.
func Summarize(recs []models.PriceRecommendation) models.RecommendationSummary {
	if len(recs) == 0 {
		return models.RecommendationSummary{}
	}
	s := models.RecommendationSummary{
		Count:    len(recs),
		MinPrice: recs[0].OptimizedPrice,
		MaxPrice: recs[0].OptimizedPrice,
	}
	var priceSum, confSum float64
	for _, r := range recs {
		priceSum += r.OptimizedPrice
		confSum += r.Confidence
		s.TotalRevenue += r.PotentialRevenue
		if r.OptimizedPrice < s.MinPrice {
			s.MinPrice = r.OptimizedPrice
		}
		if r.OptimizedPrice > s.MaxPrice {
			s.MaxPrice = r.OptimizedPrice
		}
	}
	s.AveragePrice = round2(priceSum / float64(len(recs)))
	s.AverageConfidence = round4(confSum / float64(len(recs)))
	s.TotalRevenue = round2(s.TotalRevenue)
	return s
}

// applyPriceRules clamps the raw price into [0.7, 2.0] x base, then rounds
// to the nearest 5 above 200 (staying inside the clamp window) or to the
// nearest integer otherwise.
func applyPriceRules(raw, base float64) float64 {
	low := clampFloor * base
	high := clampCeil * base

	price := raw
	if price < low {
		price = low
	}
	if price > high {
		price = high
	}

	if price > 200 {
		price = math.Round(price/5) * 5
		if price > high {
			price -= 5
		}
		if price < low {
			price += 5
		}
		return price
	}
	return math.Round(price)
}

// confidenceFor derives a heuristic confidence from factor spread, boosted
// when both external-data factors (competition, historical) were available.
func confidenceFor(f models.PricingFactors) float64 {
	vals := f.Values()
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var variance float64
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(vals))

	conf := 1 - variance*0.5
	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 0.95 {
		conf = 0.95
	}
	if f.Competition != 1.0 && f.Historical != 1.0 {
		conf *= 1.1
		if conf > 0.95 {
			conf = 0.95
		}
	}
	return conf
}

// estimatedOccupancy maps the factor mean onto a coarse occupancy estimate.
func estimatedOccupancy(f models.PricingFactors) float64 {
	vals := f.Values()
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	switch {
	case mean > 1.2:
		return 0.85
	case mean < 0.9:
		return 0.55
	default:
		return 0.7
	}
}

func buildNotes(final, base float64, f models.PricingFactors) []string {
	var notes []string
	if final > base*1.1 {
		notes = append(notes, "Price raised more than 10% above the base rate")
	}
	if final < base*0.9 {
		notes = append(notes, "Price lowered more than 10% below the base rate")
	}
	if f.Events >= 1.2 {
		notes = append(notes, "Strong local event impact on this date")
	}
	if f.Seasonal >= highSeason {
		notes = append(notes, "High season date")
	}
	if f.Competition >= 1.05 {
		notes = append(notes, "Competitors are priced above your base rate")
	}
	return notes
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
