package api

import (
	"HostPulse/internal/domain/models"
	"HostPulse/internal/realtime"
	"HostPulse/internal/services/pricing"
	xhttp "HostPulse/pkg/http"
	xlogger "HostPulse/pkg/logger"
	"HostPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// PriceBroadcaster pushes a freshly computed recommendation to websocket
// subscribers of the pricing topic.
type PriceBroadcaster interface {
	Broadcast(topic string, data any)
}

// PricingHandler serves price recommendations over REST.
type PricingHandler struct {
	logger      *xlogger.Logger
	engine      *pricing.Engine
	broadcaster PriceBroadcaster
}

func NewPricingHandler(logger *xlogger.Logger, engine *pricing.Engine, broadcaster PriceBroadcaster) *PricingHandler {
	return &PricingHandler{logger: logger, engine: engine, broadcaster: broadcaster}
}

func (h *PricingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/pricing")
	g.GET("/optimal", h.Optimal)
	g.GET("/recommendations", h.Recommendations)
}

func (h *PricingHandler) Optimal(c echo.Context) error {
	req := &models.OptimalPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := util.ParseDate(req.Date)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	rec, err := h.engine.OptimalPrice(c.Request().Context(), req.PropertyID, date)
	if err != nil {
		h.logger.Error("optimal price error",
			xlogger.String("property", req.PropertyID),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast(realtime.TopicPricing, map[string]any{
			"property_id":    req.PropertyID,
			"recommendation": rec,
		})
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *PricingHandler) Recommendations(c echo.Context) error {
	req := &models.RecommendationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, err := util.ParseDate(req.From)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	to, err := util.ParseDate(req.To)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	if to.Before(from) {
		return xhttp.BadRequestResponse(c, "to must not be before from")
	}
	// Bound the range so one request cannot trigger a year of factor fetches.
	if util.DaysBetween(from, to) > req.MaxDays {
		to = from.AddDate(0, 0, req.MaxDays-1)
	}

	report, err := h.engine.Report(c.Request().Context(), req.PropertyID, from, to)
	if err != nil {
		h.logger.Error("pricing report error",
			xlogger.String("property", req.PropertyID),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}
