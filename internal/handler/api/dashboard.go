package api

import (
	"HostPulse/internal/domain/models"
	"HostPulse/internal/usecase"
	xhttp "HostPulse/pkg/http"
	xlogger "HostPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the aggregated dashboard snapshot over REST. The
// same payload is what the scheduler pushes to websocket subscribers.
type DashboardHandler struct {
	logger     *xlogger.Logger
	dashboards *usecase.DashboardAggregator
}

func NewDashboardHandler(logger *xlogger.Logger, dashboards *usecase.DashboardAggregator) *DashboardHandler {
	return &DashboardHandler{logger: logger, dashboards: dashboards}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.dashboards.DashboardData(c.Request().Context(), req.OwnerID)
	if err != nil {
		h.logger.Error("dashboard usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}
