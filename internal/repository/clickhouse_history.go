package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	pkgch "HostPulse/pkg/clickhouse"
	applogger "HostPulse/pkg/logger"
)

// PerformanceSchema creates the daily property rollup table (idempotent).
var PerformanceSchema = []string{
	`CREATE TABLE IF NOT EXISTS property_performance_daily (
        property_id String,
        day         Date,
        occupancy   Float64,
        revenue     Float64
    ) ENGINE = ReplacingMergeTree()
    ORDER BY (property_id, day)`,
}

// CHHistoryStore implements HistoryStore backed by ClickHouse daily rollups.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

// Performance returns the same calendar day from past years plus the
// surrounding week of each, which is what the historical pricing factor
// averages over.
func (s *CHHistoryStore) Performance(ctx context.Context, propertyID string, date time.Time) ([]models.PerformancePoint, error) {
	start := time.Now()
	const q = `
        SELECT day, occupancy, revenue
        FROM property_performance_daily
        WHERE property_id = ?
          AND toMonth(day) = ?
          AND toDayOfMonth(day) BETWEEN ? AND ?
          AND day < ?
        ORDER BY day ASC
    `
	dayLo := date.Day() - 3
	if dayLo < 1 {
		dayLo = 1
	}
	dayHi := date.Day() + 3
	rows, err := s.db.QueryContext(ctx, q, propertyID, int(date.Month()), dayLo, dayHi, date)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse performance query error",
				applogger.String("property", propertyID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get performance: %w", err)
	}
	defer rows.Close()

	out := make([]models.PerformancePoint, 0, 32)
	for rows.Next() {
		var p models.PerformancePoint
		if err := rows.Scan(&p.Date, &p.Occupancy, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan performance point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse performance ok",
			applogger.String("property", propertyID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}
