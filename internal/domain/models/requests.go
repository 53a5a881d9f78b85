package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type DashboardRequest struct {
	OwnerID string `query:"owner" json:"owner" validate:"required"`
}

type OptimalPriceRequest struct {
	PropertyID string `query:"property" json:"property" validate:"required"`
	Date       string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type RecommendationsRequest struct {
	PropertyID string `query:"property" json:"property" validate:"required"`
	From       string `query:"from" json:"from" validate:"required,datetime=2006-01-02"`
	To         string `query:"to" json:"to" validate:"required,datetime=2006-01-02"`
	MaxDays    int    `query:"max_days" json:"max_days" default:"90" validate:"gte=1,lte=366"`
}
