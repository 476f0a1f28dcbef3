package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

const headerQuestSetSource = "X-Quest-Set-Source"

type ProfessionView struct {
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	OrderIndex int    `json:"order_index"`
	IsActive   bool   `json:"is_active"`
}

type QuestView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PointsReward int    `json:"points_reward"`
	Type         string `json:"type"`
	Level        int    `json:"level"`
	Source       string `json:"source"`
}

type MilestoneView struct {
	Niveau    int    `json:"niveau"`
	Title     string `json:"title"`
	Icon      string `json:"icon"`
	Objective string `json:"objective"`
	Reward    string `json:"reward"`
}

type ProfessionHandler struct {
	log               *logger.Logger
	catalog           services.CatalogService
	assignment        services.AssignmentService
	progression       services.ProgressionService
	idempotentDefault bool
}

func NewProfessionHandler(
	log *logger.Logger,
	catalog services.CatalogService,
	assignment services.AssignmentService,
	progression services.ProgressionService,
	idempotentDefault bool,
) *ProfessionHandler {
	return &ProfessionHandler{
		log:               log.With("handler", "ProfessionHandler"),
		catalog:           catalog,
		assignment:        assignment,
		progression:       progression,
		idempotentDefault: idempotentDefault,
	}
}

// GET /api/professions
func (h *ProfessionHandler) List(c *gin.Context) {
	rows, err := h.catalog.ListProfessions(c.Request.Context(), false)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	out := make([]ProfessionView, 0, len(rows))
	for _, p := range rows {
		out = append(out, ProfessionView{
			Slug:       p.Slug,
			Label:      p.Label,
			Icon:       p.Icon,
			OrderIndex: p.OrderIndex,
			IsActive:   p.IsActive,
		})
	}
	response.RespondOK(c, out)
}

// GET /api/professions/:slug/quests
func (h *ProfessionHandler) Quests(c *gin.Context) {
	set, err := h.catalog.ListQuests(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	out := make([]QuestView, 0, len(set.Quests))
	for _, q := range set.Quests {
		out = append(out, QuestView{
			ID:           q.Identity.Key(),
			Title:        q.Title,
			Description:  q.Description,
			PointsReward: q.PointsReward,
			Type:         string(q.Type),
			Level:        q.Level,
			Source:       string(q.Source),
		})
	}
	c.Header(headerQuestSetSource, string(set.Source))
	response.RespondOK(c, out)
}

// POST /api/professions/:slug/assign-quests/:userId?idempotent=bool
func (h *ProfessionHandler) AssignQuests(c *gin.Context) {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	idempotent := h.idempotentDefault
	if raw := strings.TrimSpace(c.Query("idempotent")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Fail(c, h.log, apierr.Invalid("invalid_idempotent", "idempotent must be a boolean"))
			return
		}
		idempotent = v
	}
	res, err := h.assignment.Assign(c.Request.Context(), userID, c.Param("slug"), idempotent)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	c.Header(headerQuestSetSource, string(res.Source))
	c.JSON(http.StatusOK, gin.H{"assigned": res.Assigned})
}

// GET /api/professions/:slug/progression/full?user_id=
// GET /api/professions/:slug/progression?user_id=
func (h *ProfessionHandler) Progression(c *gin.Context) {
	userID, err := optionalUserID(c)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	full, err := h.progression.Full(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, full)
}

// GET /api/professions/:slug/milestones
func (h *ProfessionHandler) Milestones(c *gin.Context) {
	rows, err := h.catalog.ListMilestones(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	out := make([]MilestoneView, 0, len(rows))
	for _, m := range rows {
		out = append(out, MilestoneView{
			Niveau:    m.Niveau,
			Title:     m.Title,
			Icon:      m.Icon,
			Objective: m.Objective,
			Reward:    m.Reward,
		})
	}
	response.RespondOK(c, out)
}
