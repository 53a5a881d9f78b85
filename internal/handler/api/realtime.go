package api

import (
	"net/http"

	"HostPulse/internal/realtime"
	xlogger "HostPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// RealtimeHandler upgrades dashboard clients to websockets and hands them to
// the realtime transport.
type RealtimeHandler struct {
	logger    *xlogger.Logger
	transport *realtime.Transport
	upgrader  websocket.Upgrader
}

func NewRealtimeHandler(logger *xlogger.Logger, transport *realtime.Transport) *RealtimeHandler {
	return &RealtimeHandler{
		logger:    logger,
		transport: transport,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser dashboards connect cross-origin; auth happens after
			// the upgrade via the authenticate message.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *RealtimeHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

func (h *RealtimeHandler) Serve(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return err
	}
	h.transport.Handle(c.Request().Context(), ws)
	return nil
}
