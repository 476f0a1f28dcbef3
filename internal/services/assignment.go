package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	"github.com/yungbote/recharge-backend/internal/data/repos"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
)

type AssignResult struct {
	Assigned int            `json:"assigned"`
	Source   QuestSetSource `json:"source"`
}

type AssignmentService interface {
	Assign(ctx context.Context, userID uuid.UUID, slug string, idempotent bool) (AssignResult, error)
	// SetProfession moves the user onto slug and assigns its quests
	// idempotently. Either both happen or neither does.
	SetProfession(ctx context.Context, userID uuid.UUID, slug string) (AssignResult, error)
	ListUserQuests(ctx context.Context, userID uuid.UUID, slug string) ([]*types.UserProfessionQuest, error)
}

type AssignmentServiceDeps struct {
	Log        *logger.Logger
	Catalog    CatalogService
	Users      repos.UserRepo
	UserQuests repos.UserQuestRepo
	Aggregate  aggregates.QuestAssignmentAggregate
	Bus        bus.Bus
	Metrics    *observability.Metrics
}

type assignmentService struct {
	log        *logger.Logger
	catalog    CatalogService
	users      repos.UserRepo
	userQuests repos.UserQuestRepo
	agg        aggregates.QuestAssignmentAggregate
	events     eventPublisher
	metrics    *observability.Metrics
}

func NewAssignmentService(deps AssignmentServiceDeps) AssignmentService {
	log := deps.Log.With("service", "AssignmentService")
	return &assignmentService{
		log:        log,
		catalog:    deps.Catalog,
		users:      deps.Users,
		userQuests: deps.UserQuests,
		agg:        deps.Aggregate,
		events:     eventPublisher{bus: deps.Bus, metrics: deps.Metrics, log: log},
		metrics:    deps.Metrics,
	}
}

func (s *assignmentService) Assign(ctx context.Context, userID uuid.UUID, slug string, idempotent bool) (AssignResult, error) {
	return s.assign(ctx, userID, slug, idempotent, false)
}

func (s *assignmentService) SetProfession(ctx context.Context, userID uuid.UUID, slug string) (AssignResult, error) {
	return s.assign(ctx, userID, slug, true, true)
}

func (s *assignmentService) assign(ctx context.Context, userID uuid.UUID, slug string, idempotent, setProfession bool) (AssignResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "AssignmentService.Assign")
	defer span.End()
	span.SetAttributes(
		attribute.String("profession.slug", slug),
		attribute.Bool("assign.idempotent", idempotent),
		attribute.Bool("assign.set_profession", setProfession),
	)

	if err := s.requireUser(ctx, userID); err != nil {
		return AssignResult{}, err
	}
	// ListQuests also rejects unknown or inactive professions.
	set, err := s.catalog.ListQuests(ctx, slug)
	if err != nil {
		return AssignResult{}, err
	}

	res, err := s.agg.Assign(ctx, aggregates.AssignQuestsInput{
		UserID:         userID,
		ProfessionSlug: slug,
		Quests:         set.Quests,
		Idempotent:     idempotent,
		SetProfession:  setProfession,
	})
	if err != nil {
		return AssignResult{}, fmt.Errorf("assign quests: %w", err)
	}

	mode := "legacy"
	if idempotent {
		mode = "idempotent"
	}
	s.metrics.AddQuestsAssigned(string(set.Source), mode, res.Assigned)
	span.SetAttributes(attribute.Int("assign.count", res.Assigned))

	if res.Assigned > 0 {
		s.events.publish(ctx, userID, realtime.EventQuestsAssigned, map[string]any{
			"profession_slug": slug,
			"assigned":        res.Assigned,
			"source":          set.Source,
		})
	}
	s.log.Info("quests assigned",
		"user_id", userID,
		"profession_slug", slug,
		"mode", mode,
		"source", set.Source,
		"assigned", res.Assigned,
	)
	return AssignResult{Assigned: res.Assigned, Source: set.Source}, nil
}

func (s *assignmentService) ListUserQuests(ctx context.Context, userID uuid.UUID, slug string) ([]*types.UserProfessionQuest, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.userQuests.ListByUser(dbctx.New(ctx), userID, slug)
	if err != nil {
		return nil, fmt.Errorf("list user quests: %w", err)
	}
	return rows, nil
}

func (s *assignmentService) requireUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.Invalid("invalid_user_id", "user id is required")
	}
	u, err := s.users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return apierr.NotFound("user_not_found", "unknown user %s", userID)
	}
	return nil
}
