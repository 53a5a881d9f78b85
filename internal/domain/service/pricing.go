package service

import (
	"context"
	"time"
)

// FactorProvider computes the five independent pricing factors for a
// property/date pair. Every method returns a multiplier where 1.0 is
// neutral; implementations must swallow their own failures and fall back to
// neutral instead of propagating.
type FactorProvider interface {
	Seasonal(date time.Time) float64
	Demand(now, date time.Time) float64
	Competition(ctx context.Context, propertyID string, date time.Time) float64
	Historical(ctx context.Context, propertyID string, date time.Time) float64
	Events(ctx context.Context, propertyID string, date time.Time) float64
}
