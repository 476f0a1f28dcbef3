package services

import (
	"context"
	"errors"
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

type CompletionResult struct {
	QuestID          string `json:"quest_id"`
	ProfessionSlug   string `json:"profession_slug"`
	AwardedXP        int64  `json:"awarded_xp"`
	NewProgressionXP int    `json:"new_progression_xp"`
	LevelUp          bool   `json:"level_up"`
	Niveau           int    `json:"niveau"`
	XPTotal          int64  `json:"xp_total"`
	TierMax          int    `json:"tier_max"`
}

type CompletionService interface {
	// Complete marks the user's oldest pending copy of the quest done and
	// awards its catalog reward. Completing a quest with no pending copy
	// awards nothing and is not an error.
	Complete(ctx context.Context, userID uuid.UUID, questID string) (CompletionResult, error)
}

type CompletionServiceDeps struct {
	Log       *logger.Logger
	Catalog   CatalogService
	Users     repos.UserRepo
	Aggregate aggregates.QuestCompletionAggregate
	Bus       bus.Bus
	Metrics   *observability.Metrics
}

type completionService struct {
	log     *logger.Logger
	catalog CatalogService
	users   repos.UserRepo
	agg     aggregates.QuestCompletionAggregate
	events  eventPublisher
	metrics *observability.Metrics
}

func NewCompletionService(deps CompletionServiceDeps) CompletionService {
	log := deps.Log.With("service", "CompletionService")
	return &completionService{
		log:     log,
		catalog: deps.Catalog,
		users:   deps.Users,
		agg:     deps.Aggregate,
		events:  eventPublisher{bus: deps.Bus, metrics: deps.Metrics, log: log},
		metrics: deps.Metrics,
	}
}

func (s *completionService) Complete(ctx context.Context, userID uuid.UUID, questID string) (CompletionResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "CompletionService.Complete")
	defer span.End()

	id, err := types.ParseQuestIdentity(questID)
	if err != nil {
		if errors.Is(err, types.ErrInvalidQuestIdentity) {
			return CompletionResult{}, apierr.NotFound("quest_not_found", "unknown quest %q", questID)
		}
		return CompletionResult{}, err
	}
	key := id.Key()
	span.SetAttributes(attribute.String("quest.id", key))

	if userID == uuid.Nil {
		return CompletionResult{}, apierr.Invalid("invalid_user_id", "user_id is required")
	}
	u, err := s.users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return CompletionResult{}, apierr.NotFound("user_not_found", "unknown user %s", userID)
	}

	quest, questSlug, err := s.catalog.LookupQuest(ctx, id)
	if err != nil {
		return CompletionResult{}, err
	}
	fallback := ""
	switch {
	case questSlug != nil:
		fallback = *questSlug
	case u.ProfessionSlug != nil:
		fallback = *u.ProfessionSlug
	}

	res, err := s.agg.Complete(ctx, aggregates.CompleteQuestInput{
		UserID:                 userID,
		QuestKey:               key,
		PointsReward:           quest.PointsReward,
		FallbackProfessionSlug: fallback,
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("complete quest: %w", err)
	}

	out := CompletionResult{
		QuestID:          key,
		ProfessionSlug:   res.ProfessionSlug,
		AwardedXP:        res.Outcome.Awarded,
		NewProgressionXP: res.Outcome.After.ProgressXP,
		LevelUp:          res.Outcome.LevelUp,
		Niveau:           res.Outcome.After.Niveau,
		XPTotal:          res.Outcome.After.XPTotal,
		TierMax:          res.Outcome.After.TierMax,
	}
	span.SetAttributes(
		attribute.Bool("quest.completed", res.Completed),
		attribute.Int64("quest.awarded_xp", out.AwardedXP),
	)
	if !res.Completed {
		s.log.Debug("quest completion without pending record", "user_id", userID, "quest_id", key)
		return out, nil
	}

	s.metrics.ObserveCompletion(out.ProfessionSlug, out.AwardedXP, out.LevelUp, out.Niveau)
	s.events.publish(ctx, userID, realtime.EventQuestCompleted, out)
	if out.LevelUp {
		s.events.publish(ctx, userID, realtime.EventLevelUp, map[string]any{
			"profession_slug": out.ProfessionSlug,
			"niveau_before":   res.Outcome.Before.Niveau,
			"niveau":          out.Niveau,
			"tier_max":        out.TierMax,
		})
	}
	s.log.Info("quest completed",
		"user_id", userID,
		"quest_id", key,
		"profession_slug", out.ProfessionSlug,
		"awarded_xp", out.AwardedXP,
		"level_up", out.LevelUp,
	)
	return out, nil
}
