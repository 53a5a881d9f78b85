package models

import "time"

// Property is a rentable unit as returned by the backoffice service.
type Property struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	Name      string  `json:"name"`
	Active    bool    `json:"active"`
	BasePrice float64 `json:"base_price"`
}

// Reservation is a booking record. Status follows the backoffice vocabulary
// (confirmed, pending, cancelled).
type Reservation struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Channel    string    `json:"channel"`
	Status     string    `json:"status"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Total      float64   `json:"total"`
}

// ChannelStatus describes one distribution channel (direct, booking, airbnb...).
type ChannelStatus struct {
	Channel      string  `json:"channel"`
	Connected    bool    `json:"connected"`
	Reservations int     `json:"reservations"`
	Revenue      float64 `json:"revenue"`
}

// ActivityEvent is one entry of the account activity feed.
type ActivityEvent struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Kind       string    `json:"kind"` // reservation_created, reservation_cancelled, ...
	PropertyID string    `json:"property_id,omitempty"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// PerformancePoint is one comparable past period used by the historical
// pricing factor.
type PerformancePoint struct {
	Date      time.Time `json:"date"`
	Occupancy float64   `json:"occupancy"`
	Revenue   float64   `json:"revenue"`
}

// LocalEvent is an event near a property with a pricing impact level.
type LocalEvent struct {
	Name   string `json:"name"`
	Impact string `json:"impact"` // high, medium, low
}
