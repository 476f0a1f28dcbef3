package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	users       services.UserService
	assignment  services.AssignmentService
	progression services.ProgressionService
}

func NewUserHandler(
	log *logger.Logger,
	users services.UserService,
	assignment services.AssignmentService,
	progression services.ProgressionService,
) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		users:       users,
		assignment:  assignment,
		progression: progression,
	}
}

// POST /api/users
// body: { "email": "...", "name": "...", "profession_slug": "..." }
func (h *UserHandler) Ensure(c *gin.Context) {
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	u, created, err := h.users.Ensure(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, u)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, u)
}

// GET /api/users/:id/quests?profession_slug=
func (h *UserHandler) Quests(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	rows, err := h.assignment.ListUserQuests(c.Request.Context(), id, strings.TrimSpace(c.Query("profession_slug")))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/users/:id/progression-events?limit=
func (h *UserHandler) ProgressionEvents(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	rows, err := h.progression.Events(c.Request.Context(), id, limit)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, rows)
}
