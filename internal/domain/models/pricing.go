package models

import "time"

// PricingFactors holds the five independent multipliers for one
// (property, date) pair. 1.0 is neutral for every factor.
type PricingFactors struct {
	Seasonal    float64 `json:"seasonal"`
	Demand      float64 `json:"demand"`
	Competition float64 `json:"competition"`
	Historical  float64 `json:"historical"`
	Events      float64 `json:"events"`
}

// Values returns the factors in weight order: seasonal, demand, competition,
// historical, events.
func (f PricingFactors) Values() [5]float64 {
	return [5]float64{f.Seasonal, f.Demand, f.Competition, f.Historical, f.Events}
}

// PriceRecommendation is the engine output for a single day. Immutable once
// computed.
type PriceRecommendation struct {
	Date               time.Time      `json:"date"`
	BasePrice          float64        `json:"base_price"`
	OptimizedPrice     float64        `json:"optimized_price"`
	Multiplier         float64        `json:"multiplier"`
	Factors            PricingFactors `json:"factors"`
	Confidence         float64        `json:"confidence"`
	EstimatedOccupancy float64        `json:"estimated_occupancy"`
	PotentialRevenue   float64        `json:"potential_revenue"`
	Notes              []string       `json:"notes,omitempty"`
}

// RecommendationSummary aggregates a date range of recommendations.
type RecommendationSummary struct {
	Count            int     `json:"count"`
	AveragePrice     float64 `json:"average_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AverageConfidence float64 `json:"average_confidence"`
	TotalRevenue     float64 `json:"total_potential_revenue"`
}

// PricingReport is the response of a range recommendation request.
type PricingReport struct {
	PropertyID      string                `json:"property_id"`
	From            time.Time             `json:"from"`
	To              time.Time             `json:"to"`
	FromCache       bool                  `json:"from_cache"`
	Recommendations []PriceRecommendation `json:"recommendations"`
	Summary         RecommendationSummary `json:"summary"`
}
