package pricing

import (
	"context"
	"math/rand"
	"time"

	domrepo "HostPulse/internal/domain/repository"
	domsvc "HostPulse/internal/domain/service"
	applogger "HostPulse/pkg/logger"
)

// Season multipliers and premiums for the seasonal factor.
const (
	highSeason   = 1.3
	midSeason    = 1.1
	lowSeason    = 0.85
	weekendBoost = 1.15
)

// Demand lead-time curve and noise bounds.
const (
	demandFloor = 0.7
	demandCeil  = 1.5
	noiseSpread = 0.1
)

// StandardFactors computes the five pricing factors from live collaborator
// data. Any collaborator failure is logged and resolves to the neutral 1.0.
type StandardFactors struct {
	prices  domrepo.PriceSource
	history domrepo.HistoryStore
	events  domrepo.EventSource
	logger  *applogger.Logger
	noise   func() float64 // market noise in [-1, 1]; injectable for tests
}

// NewStandardFactors builds the default factor provider. A nil noise source
// falls back to math/rand.
func NewStandardFactors(prices domrepo.PriceSource, history domrepo.HistoryStore, events domrepo.EventSource, logger *applogger.Logger) *StandardFactors {
	return &StandardFactors{
		prices:  prices,
		history: history,
		events:  events,
		logger:  logger,
		noise:   func() float64 { return rand.Float64()*2 - 1 },
	}
}

// SetNoise overrides the market-noise source. Tests pass a constant.
func (f *StandardFactors) SetNoise(noise func() float64) {
	if noise != nil {
		f.noise = noise
	}
}

// Seasonal buckets the month into high/medium/low season and applies the
// weekend premium on Friday and Saturday nights.
func (f *StandardFactors) Seasonal(date time.Time) float64 {
	var m float64
	switch date.Month() {
	case time.June, time.July, time.August, time.December:
		m = highSeason
	case time.April, time.May, time.September, time.October:
		m = midSeason
	default:
		m = lowSeason
	}
	if wd := date.Weekday(); wd == time.Friday || wd == time.Saturday {
		m *= weekendBoost
	}
	return m
}

// Demand follows a lead-time curve, perturbed by bounded market noise and
// clamped to [0.7, 1.5].
func (f *StandardFactors) Demand(now, date time.Time) float64 {
	lead := int(date.Sub(now).Hours() / 24)
	var m float64
	switch {
	case lead <= 7:
		m = 1.25
	case lead <= 30:
		m = 1.10
	case lead <= 60:
		m = 1.00
	default:
		m = 0.95
	}
	m += f.noise() * noiseSpread
	if m < demandFloor {
		m = demandFloor
	}
	if m > demandCeil {
		m = demandCeil
	}
	return m
}

// Competition compares the average competitor price against the property's
// base price and responds in four tiers.
func (f *StandardFactors) Competition(ctx context.Context, propertyID string, date time.Time) float64 {
	base, err := f.prices.BasePrice(ctx, propertyID)
	if err != nil || base <= 0 {
		f.warn("competition factor: base price unavailable", propertyID, err)
		return 1.0
	}
	comp, err := f.prices.CompetitorPrices(ctx, propertyID, date)
	if err != nil {
		f.warn("competition factor: competitor prices unavailable", propertyID, err)
		return 1.0
	}
	if len(comp) == 0 {
		return 1.0
	}
	var sum float64
	for _, p := range comp {
		sum += p
	}
	ratio := (sum / float64(len(comp))) / base
	switch {
	case ratio > 1.2:
		return 1.15
	case ratio > 1.05:
		return 1.05
	case ratio < 0.8:
		return 0.9
	default:
		return 1.0
	}
}

// Historical buckets average past occupancy into three tiers.
func (f *StandardFactors) Historical(ctx context.Context, propertyID string, date time.Time) float64 {
	points, err := f.history.Performance(ctx, propertyID, date)
	if err != nil {
		f.warn("historical factor: performance unavailable", propertyID, err)
		return 1.0
	}
	if len(points) == 0 {
		return 1.0
	}
	var occ float64
	for _, p := range points {
		occ += p.Occupancy
	}
	occ /= float64(len(points))
	switch {
	case occ > 0.8:
		return 1.1
	case occ < 0.5:
		return 0.9
	default:
		return 1.0
	}
}

// Events stacks local-event impact multiplicatively, capped at 2.0.
func (f *StandardFactors) Events(ctx context.Context, propertyID string, date time.Time) float64 {
	events, err := f.events.LocalEvents(ctx, propertyID, date)
	if err != nil {
		f.warn("events factor: local events unavailable", propertyID, err)
		return 1.0
	}
	m := 1.0
	for _, ev := range events {
		switch ev.Impact {
		case "high":
			m *= 1.4
		case "medium":
			m *= 1.2
		case "low":
			m *= 1.1
		}
	}
	if m > 2.0 {
		m = 2.0
	}
	return m
}

func (f *StandardFactors) warn(msg, propertyID string, err error) {
	if f.logger == nil {
		return
	}
	fields := []applogger.Field{applogger.String("property", propertyID)}
	if err != nil {
		fields = append(fields, applogger.Error(err))
	}
	f.logger.Warn(msg, fields...)
}

var _ domsvc.FactorProvider = (*StandardFactors)(nil)
