package propdata

import (
	"context"
	"time"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	"HostPulse/pkg/config"
	"HostPulse/pkg/util"
)

// PricingClient reads pricing inputs from the backoffice service: base and
// competitor prices, past performance and nearby events.
type PricingClient struct {
	*HTTPServiceBase
}

var (
	_ domrepo.PriceSource  = (*PricingClient)(nil)
	_ domrepo.HistoryStore = (*PricingClient)(nil)
	_ domrepo.EventSource  = (*PricingClient)(nil)
)

func NewPricingClient(cfg *config.Config) *PricingClient {
	return &PricingClient{HTTPServiceBase: NewHTTPServiceBase(cfg)}
}

func (c *PricingClient) BasePrice(ctx context.Context, propertyID string) (float64, error) {
	var out struct {
		BasePrice float64 `json:"base_price"`
	}
	if err := c.GetJSON(ctx, "/internal/properties/"+propertyID+"/base-price", nil, &out); err != nil {
		return 0, err
	}
	return out.BasePrice, nil
}

func (c *PricingClient) CompetitorPrices(ctx context.Context, propertyID string, date time.Time) ([]float64, error) {
	var out struct {
		Prices []float64 `json:"prices"`
	}
	query := map[string][]string{"date": {util.FormatDate(date)}}
	if err := c.GetJSON(ctx, "/internal/properties/"+propertyID+"/competitor-prices", query, &out); err != nil {
		return nil, err
	}
	return out.Prices, nil
}

func (c *PricingClient) Performance(ctx context.Context, propertyID string, date time.Time) ([]models.PerformancePoint, error) {
	var out []models.PerformancePoint
	query := map[string][]string{"date": {util.FormatDate(date)}}
	err := c.GetJSON(ctx, "/internal/properties/"+propertyID+"/performance", query, &out)
	return out, err
}

func (c *PricingClient) LocalEvents(ctx context.Context, propertyID string, date time.Time) ([]models.LocalEvent, error) {
	var out []models.LocalEvent
	query := map[string][]string{"date": {util.FormatDate(date)}}
	err := c.GetJSON(ctx, "/internal/properties/"+propertyID+"/local-events", query, &out)
	return out, err
}
