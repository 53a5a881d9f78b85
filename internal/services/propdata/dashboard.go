package propdata

import (
	"context"
	"strconv"

	"HostPulse/internal/domain/models"
	domrepo "HostPulse/internal/domain/repository"
	"HostPulse/pkg/config"
)

// DashboardClient reads owner records from the backoffice CRUD service.
type DashboardClient struct {
	*HTTPServiceBase
}

var _ domrepo.DashboardSource = (*DashboardClient)(nil)

func NewDashboardClient(cfg *config.Config) *DashboardClient {
	return &DashboardClient{HTTPServiceBase: NewHTTPServiceBase(cfg)}
}

func (c *DashboardClient) Properties(ctx context.Context, ownerID string) ([]models.Property, error) {
	var out []models.Property
	err := c.GetJSON(ctx, "/internal/owners/"+ownerID+"/properties", nil, &out)
	return out, err
}

func (c *DashboardClient) Reservations(ctx context.Context, ownerID string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := c.GetJSON(ctx, "/internal/owners/"+ownerID+"/reservations", nil, &out)
	return out, err
}

func (c *DashboardClient) Channels(ctx context.Context, ownerID string) ([]models.ChannelStatus, error) {
	var out []models.ChannelStatus
	err := c.GetJSON(ctx, "/internal/owners/"+ownerID+"/channels", nil, &out)
	return out, err
}

func (c *DashboardClient) Activity(ctx context.Context, ownerID string, limit int) ([]models.ActivityEvent, error) {
	var out []models.ActivityEvent
	query := map[string][]string{"limit": {strconv.Itoa(limit)}}
	err := c.GetJSON(ctx, "/internal/owners/"+ownerID+"/activity", query, &out)
	return out, err
}
