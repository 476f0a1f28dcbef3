package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

// AdminHandler serves the catalog management routes. Authorization is
// enforced again by the catalog service itself.
type AdminHandler struct {
	log        *logger.Logger
	catalog    services.CatalogService
	assignment services.AssignmentService
}

func NewAdminHandler(log *logger.Logger, catalog services.CatalogService, assignment services.AssignmentService) *AdminHandler {
	return &AdminHandler{
		log:        log.With("handler", "AdminHandler"),
		catalog:    catalog,
		assignment: assignment,
	}
}

// GET /api/admin/professions
func (h *AdminHandler) ListProfessions(c *gin.Context) {
	rows, err := h.catalog.AdminListProfessions(c.Request.Context())
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, rows)
}

// POST /api/admin/professions
func (h *AdminHandler) CreateProfession(c *gin.Context) {
	var req services.ProfessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	p, err := h.catalog.CreateProfession(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// PUT /api/admin/professions/:slug
func (h *AdminHandler) UpdateProfession(c *gin.Context) {
	var req services.ProfessionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	p, err := h.catalog.UpdateProfession(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// DELETE /api/admin/professions/:slug
func (h *AdminHandler) DeleteProfession(c *gin.Context) {
	if err := h.catalog.DeleteProfession(c.Request.Context(), c.Param("slug")); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /api/admin/professions/:slug/milestones/:niveau
func (h *AdminHandler) UpsertMilestone(c *gin.Context) {
	niveau, err := strconv.Atoi(c.Param("niveau"))
	if err != nil {
		response.Fail(c, h.log, apierr.Invalid("invalid_niveau", "niveau must be an integer"))
		return
	}
	var req services.MilestoneInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	m, err := h.catalog.UpsertMilestone(c.Request.Context(), c.Param("slug"), niveau, req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, m)
}

// GET /api/admin/quests?profession_slug=&generic=&include_disabled=
func (h *AdminHandler) ListQuests(c *gin.Context) {
	generic, _ := strconv.ParseBool(c.Query("generic"))
	includeDisabled := true
	if raw := strings.TrimSpace(c.Query("include_disabled")); raw != "" {
		includeDisabled, _ = strconv.ParseBool(raw)
	}
	rows, err := h.catalog.ListAllQuests(c.Request.Context(), services.QuestFilter{
		ProfessionSlug:  c.Query("profession_slug"),
		GenericOnly:     generic,
		IncludeDisabled: includeDisabled,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, rows)
}

// POST /api/admin/quests
func (h *AdminHandler) CreateQuest(c *gin.Context) {
	var req services.QuestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	q, err := h.catalog.CreateQuest(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, q)
}

// PUT /api/admin/quests/:id
func (h *AdminHandler) UpdateQuest(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	var req services.QuestPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid_request", err)
		return
	}
	q, err := h.catalog.UpdateQuest(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, q)
}

// DELETE /api/admin/quests/:id
func (h *AdminHandler) DeleteQuest(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	if err := h.catalog.DeleteQuest(c.Request.Context(), id); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/admin/users/:id/set-profession/:slug
func (h *AdminHandler) SetUserProfession(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	res, err := h.assignment.SetProfession(c.Request.Context(), id, c.Param("slug"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"assigned": res.Assigned, "source": res.Source})
}
