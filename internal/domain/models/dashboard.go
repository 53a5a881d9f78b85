package models

import "time"

// PropertyStats aggregates the property portfolio of one account.
type PropertyStats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	OccupiedToday int     `json:"occupied_today"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// RevenueStats aggregates confirmed reservation revenue over rolling windows.
type RevenueStats struct {
	Today        float64 `json:"today"`
	Week         float64 `json:"week"`
	Month        float64 `json:"month"`
	Year         float64 `json:"year"`
	Reservations int     `json:"reservations"`
}

// Alert is a dashboard-visible warning (channel down, repeated errors...).
type Alert struct {
	Severity string    `json:"severity"` // info, warning, critical
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// DashboardSnapshot is one consistent view of an account at a point in time.
// Degraded lists the sections that fell back to zeroed defaults because their
// data source was unavailable; the snapshot itself always renders.
type DashboardSnapshot struct {
	OwnerID     string          `json:"owner_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	FromCache   bool            `json:"from_cache"`
	Properties  PropertyStats   `json:"properties"`
	Revenue     RevenueStats    `json:"revenue"`
	Channels    []ChannelStatus `json:"channels"`
	Activity    []ActivityEvent `json:"activity"`
	Alerts      []Alert         `json:"alerts"`
	Degraded    []string        `json:"degraded,omitempty"`
}
