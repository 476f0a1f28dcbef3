package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
	"github.com/yungbote/recharge-backend/internal/services"
)

type RealtimeHandler struct {
	log   *logger.Logger
	hub   *realtime.Hub
	users services.UserService
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, users services.UserService) *RealtimeHandler {
	return &RealtimeHandler{
		log:   log.With("handler", "RealtimeHandler"),
		hub:   hub,
		users: users,
	}
}

// GET /api/users/:id/events
// Streams the user's progression events as server-sent events.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		response.Fail(c, h.log, err)
		return
	}

	client := h.hub.NewClient(id)
	h.hub.AddChannel(client, realtime.UserChannel(id))
	h.log.Debug("event stream open", "user_id", id, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("event stream closed", "user_id", id, "client_id", client.ID)
}
