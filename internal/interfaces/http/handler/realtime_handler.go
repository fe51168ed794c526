package handler

import (
	"errors"

	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/infrastructure/realtime"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades clients onto the lifecycle event feed
type RealtimeHandler struct {
	BaseHandler
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Subscribe godoc
//
//	@ID				subscribeReturnEvents
//	@Summary		Stream lifecycle events
//	@Description	Upgrades to a websocket. Each text frame is one event envelope. Filter with location_id.
//	@Tags			returns
//	@Param			location_id	query	string	false	"Only events for this location"	format(uuid)
//	@Success		101
//	@Failure		400	{object}	ErrorResponse
//	@Router			/returns/events/ws [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	var locationID *uuid.UUID
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid location_id format")
			return
		}
		locationID = &id
	}

	if err := h.hub.Serve(c.Writer, c.Request, locationID); err != nil && !errors.Is(err, realtime.ErrHubStopped) {
		logger.L(c.Request.Context()).Debug("Websocket upgrade failed", zap.Error(err))
	}
}
