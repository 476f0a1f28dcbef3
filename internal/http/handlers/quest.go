package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

type QuestHandler struct {
	log        *logger.Logger
	completion services.CompletionService
}

func NewQuestHandler(log *logger.Logger, completion services.CompletionService) *QuestHandler {
	return &QuestHandler{
		log:        log.With("handler", "QuestHandler"),
		completion: completion,
	}
}

// POST /api/quests/:questId/complete
// body: { "user_id": "<uuid>" }
func (h *QuestHandler) Complete(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Fail(c, h.log, apierr.Invalid("invalid_user_id", "invalid user_id %q", req.UserID))
		return
	}
	res, err := h.completion.Complete(c.Request.Context(), userID, c.Param("questId"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
