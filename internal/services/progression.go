package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/recharge-backend/internal/data/repos"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/progression"
)

type FullProgression struct {
	ProfessionSlug    string `json:"profession_slug"`
	ProfessionLabel   string `json:"profession_label"`
	ProfessionIcon    string `json:"profession_icon"`
	ProgressionNiveau int    `json:"progression_niveau"`
	ProgressionXP     int    `json:"progression_xp"`
	XPTotal           int64  `json:"xp_total"`
	NextObjective     string `json:"next_objective"`
	TierMax           int    `json:"tier_max"`
}

type ProgressionService interface {
	// Full reports a user's standing in a profession. A nil userID yields
	// the starting defaults; otherwise the progression row is created on
	// first read.
	Full(ctx context.Context, slug string, userID *uuid.UUID) (FullProgression, error)
	Events(ctx context.Context, userID uuid.UUID, limit int) ([]*types.UserProgressionEvent, error)
}

type ProgressionServiceDeps struct {
	Log         *logger.Logger
	Calculator  *progression.Calculator
	Catalog     CatalogService
	Users       repos.UserRepo
	Progression repos.UserProgressionRepo
	Events      repos.ProgressionEventRepo
}

type progressionService struct {
	log         *logger.Logger
	calc        *progression.Calculator
	catalog     CatalogService
	users       repos.UserRepo
	progression repos.UserProgressionRepo
	events      repos.ProgressionEventRepo
}

func NewProgressionService(deps ProgressionServiceDeps) ProgressionService {
	calc := deps.Calculator
	if calc == nil {
		calc = progression.MustCalculator(progression.NewDefaultConfig())
	}
	return &progressionService{
		log:         deps.Log.With("service", "ProgressionService"),
		calc:        calc,
		catalog:     deps.Catalog,
		users:       deps.Users,
		progression: deps.Progression,
		events:      deps.Events,
	}
}

func (s *progressionService) Full(ctx context.Context, slug string, userID *uuid.UUID) (FullProgression, error) {
	ctx, span := observability.Tracer().Start(ctx, "ProgressionService.Full")
	defer span.End()
	span.SetAttributes(attribute.String("profession.slug", slug))

	p, err := s.catalog.GetProfession(ctx, slug)
	if err != nil {
		return FullProgression{}, err
	}

	var xp int64
	if userID != nil {
		dbc := dbctx.New(ctx)
		u, err := s.users.GetByID(dbc, *userID)
		if err != nil {
			return FullProgression{}, fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return FullProgression{}, apierr.NotFound("user_not_found", "unknown user %s", *userID)
		}
		row, err := s.progression.Ensure(dbc, *userID, p.Slug, 1)
		if err != nil {
			return FullProgression{}, fmt.Errorf("ensure progression: %w", err)
		}
		xp = row.XPTotal
	}
	snap := s.calc.Snapshot(xp)

	objective := ""
	m, err := s.catalog.Milestone(ctx, p.Slug, snap.Niveau)
	if err != nil {
		return FullProgression{}, err
	}
	if m != nil {
		objective = m.Objective
	}

	return FullProgression{
		ProfessionSlug:    p.Slug,
		ProfessionLabel:   p.Label,
		ProfessionIcon:    p.Icon,
		ProgressionNiveau: snap.Niveau,
		ProgressionXP:     snap.ProgressXP,
		XPTotal:           snap.XPTotal,
		NextObjective:     objective,
		TierMax:           snap.TierMax,
	}, nil
}

func (s *progressionService) Events(ctx context.Context, userID uuid.UUID, limit int) ([]*types.UserProgressionEvent, error) {
	rows, err := s.events.ListByUser(dbctx.New(ctx), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list progression events: %w", err)
	}
	return rows, nil
}
