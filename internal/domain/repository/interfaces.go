package repository

import (
	"context"
	"time"

	"HostPulse/internal/domain/models"
)

// DashboardSource exposes the backoffice records a dashboard snapshot is
// built from. Implementations call the CRUD service; failures of individual
// methods degrade to defaults in the aggregator, never here.
type DashboardSource interface {
	Properties(ctx context.Context, ownerID string) ([]models.Property, error)
	Reservations(ctx context.Context, ownerID string) ([]models.Reservation, error)
	Channels(ctx context.Context, ownerID string) ([]models.ChannelStatus, error)
	Activity(ctx context.Context, ownerID string, limit int) ([]models.ActivityEvent, error)
}

// PriceSource provides the reference and competitor prices for a property.
// BasePrice is the only pricing dependency allowed to fail the whole call.
type PriceSource interface {
	BasePrice(ctx context.Context, propertyID string) (float64, error)
	CompetitorPrices(ctx context.Context, propertyID string, date time.Time) ([]float64, error)
}

// HistoryStore returns occupancy/revenue figures for past periods comparable
// to the given date.
type HistoryStore interface {
	Performance(ctx context.Context, propertyID string, date time.Time) ([]models.PerformancePoint, error)
}

// EventSource lists local events near a property on a date.
type EventSource interface {
	LocalEvents(ctx context.Context, propertyID string, date time.Time) ([]models.LocalEvent, error)
}

// TokenVerifier validates a credential token and resolves the owning account.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (ownerID string, err error)
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordConnections(n int)
	RecordBroadcast(topic string, receivers int)
	RecordCache(name string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
