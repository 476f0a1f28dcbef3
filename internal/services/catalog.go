package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	"github.com/yungbote/recharge-backend/internal/data/repos"
	"github.com/yungbote/recharge-backend/internal/data/seed"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/normalization"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
)

const (
	DefaultCatalogCacheSize = 256
	// DefaultCatalogCacheTTL bounds how long a quest set survives when a
	// catalog.changed message from another instance is lost.
	DefaultCatalogCacheTTL = 30 * time.Second
)

type ProfessionInput struct {
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	OrderIndex int    `json:"order_index"`
	IsActive   *bool  `json:"is_active"`
}

type ProfessionPatch struct {
	Label      *string `json:"label"`
	Icon       *string `json:"icon"`
	OrderIndex *int    `json:"order_index"`
	IsActive   *bool   `json:"is_active"`
}

type QuestInput struct {
	ProfessionSlug *string         `json:"profession_slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Type           types.QuestType `json:"type"`
	PointsReward   int             `json:"points_reward"`
	Level          int             `json:"level"`
	OrderIndex     int             `json:"order_index"`
	IsEnabled      *bool           `json:"is_enabled"`
}

// QuestPatch updates the given fields. An empty ProfessionSlug moves the
// quest to the generic pool.
type QuestPatch struct {
	ProfessionSlug *string          `json:"profession_slug"`
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Type           *types.QuestType `json:"type"`
	PointsReward   *int             `json:"points_reward"`
	Level          *int             `json:"level"`
	OrderIndex     *int             `json:"order_index"`
	IsEnabled      *bool            `json:"is_enabled"`
}

type MilestoneInput struct {
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	Objective  string `json:"objective"`
	Reward     string `json:"reward"`
	OrderIndex *int   `json:"order_index"`
}

type QuestFilter struct {
	ProfessionSlug  string
	GenericOnly     bool
	IncludeDisabled bool
}

type CatalogService interface {
	ListProfessions(ctx context.Context, includeInactive bool) ([]*types.Profession, error)
	GetProfession(ctx context.Context, slug string) (*types.Profession, error)
	ListQuests(ctx context.Context, slug string) (QuestSet, error)
	// LookupQuest resolves a quest identity against both catalogs. Admin
	// quests are found even after soft deletion.
	LookupQuest(ctx context.Context, id types.QuestIdentity) (types.CatalogQuest, *string, error)
	ListMilestones(ctx context.Context, slug string) ([]*types.ProgressionMilestone, error)
	Milestone(ctx context.Context, slug string, niveau int) (*types.ProgressionMilestone, error)

	AdminListProfessions(ctx context.Context) ([]*types.Profession, error)
	CreateProfession(ctx context.Context, in ProfessionInput) (*types.Profession, error)
	UpdateProfession(ctx context.Context, slug string, in ProfessionPatch) (*types.Profession, error)
	DeleteProfession(ctx context.Context, slug string) error
	ListAllQuests(ctx context.Context, f QuestFilter) ([]*types.Quest, error)
	CreateQuest(ctx context.Context, in QuestInput) (*types.Quest, error)
	UpdateQuest(ctx context.Context, id uuid.UUID, in QuestPatch) (*types.Quest, error)
	DeleteQuest(ctx context.Context, id uuid.UUID) error
	UpsertMilestone(ctx context.Context, slug string, niveau int, in MilestoneInput) (*types.ProgressionMilestone, error)

	// SeedIfEmpty loads the embedded catalog when no profession exists yet.
	SeedIfEmpty(ctx context.Context) (int, error)
	// InvalidateQuestSets drops every cached quest set on this instance.
	InvalidateQuestSets()
}

type CatalogServiceDeps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Runner      aggregates.TxRunner
	Professions repos.ProfessionRepo
	Quests      repos.QuestRepo
	Milestones  repos.MilestoneRepo
	Seed        *seed.Catalog
	Auth        AdminAuthorizer
	Metrics     *observability.Metrics
	TierMax     int
	CacheSize   int
	CacheTTL    time.Duration

	// Bus carries catalog.changed to the other instances. Nil keeps
	// invalidation local.
	Bus bus.Bus
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	runner      aggregates.TxRunner
	professions repos.ProfessionRepo
	quests      repos.QuestRepo
	milestones  repos.MilestoneRepo
	seed        *seed.Catalog
	auth        AdminAuthorizer
	metrics     *observability.Metrics
	tierMax     int

	cache      *lru.Cache
	cacheTTL   time.Duration
	events     eventPublisher
	loads      singleflight.Group
	generation atomic.Uint64
}

func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	size := deps.CacheSize
	if size <= 0 {
		size = DefaultCatalogCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	runner := deps.Runner
	if runner == nil {
		runner = aggregates.NewGormTxRunner(deps.DB)
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	tierMax := deps.TierMax
	if tierMax <= 0 {
		tierMax = 5
	}
	log := deps.Log.With("service", "CatalogService")
	return &catalogService{
		db:          deps.DB,
		log:         log,
		runner:      runner,
		professions: deps.Professions,
		quests:      deps.Quests,
		milestones:  deps.Milestones,
		seed:        deps.Seed,
		auth:        deps.Auth,
		metrics:     deps.Metrics,
		tierMax:     tierMax,
		cache:       cache,
		cacheTTL:    ttl,
		events:      eventPublisher{bus: deps.Bus, metrics: deps.Metrics, log: log},
	}, nil
}

func (s *catalogService) ListProfessions(ctx context.Context, includeInactive bool) ([]*types.Profession, error) {
	rows, err := s.professions.List(dbctx.New(ctx), includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list professions: %w", err)
	}
	return rows, nil
}

func (s *catalogService) GetProfession(ctx context.Context, slug string) (*types.Profession, error) {
	p, err := s.professions.GetBySlug(dbctx.New(ctx), strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("get profession: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, apierr.NotFound("profession_not_found", "unknown profession %q", slug)
	}
	return p, nil
}

type cachedQuestSet struct {
	set     QuestSet
	expires time.Time
}

func (s *catalogService) ListQuests(ctx context.Context, slug string) (QuestSet, error) {
	ctx, span := observability.Tracer().Start(ctx, "CatalogService.ListQuests")
	defer span.End()
	span.SetAttributes(attribute.String("profession.slug", slug))

	if _, err := s.GetProfession(ctx, slug); err != nil {
		return QuestSet{}, err
	}
	if v, ok := s.cache.Get(slug); ok {
		if entry := v.(cachedQuestSet); time.Now().Before(entry.expires) {
			s.metrics.IncCatalogCache(true)
			return entry.set, nil
		}
		s.cache.Remove(slug)
	}
	s.metrics.IncCatalogCache(false)

	v, err, _ := s.loads.Do(slug, func() (any, error) {
		gen := s.generation.Load()
		admin, err := s.quests.ListEnabledByProfession(dbctx.New(ctx), slug)
		if err != nil {
			return nil, fmt.Errorf("list admin quests: %w", err)
		}
		set := ResolveQuestSet(admin, s.seed.Quests(slug))
		// A mutation during the load makes this result stale.
		if s.generation.Load() == gen {
			s.cache.Add(slug, cachedQuestSet{set: set, expires: time.Now().Add(s.cacheTTL)})
		}
		return set, nil
	})
	if err != nil {
		return QuestSet{}, err
	}
	set := v.(QuestSet)
	span.SetAttributes(attribute.String("quest_set.source", string(set.Source)))
	return set, nil
}

func (s *catalogService) InvalidateQuestSets() {
	s.generation.Add(1)
	s.cache.Purge()
}

// catalogChanged purges locally and tells the other instances to do the same.
func (s *catalogService) catalogChanged(ctx context.Context) {
	s.InvalidateQuestSets()
	s.events.send(ctx, realtime.CatalogChannel, realtime.EventCatalogChanged, nil)
}

func (s *catalogService) LookupQuest(ctx context.Context, id types.QuestIdentity) (types.CatalogQuest, *string, error) {
	switch id.Kind {
	case types.IdentityCatalog:
		q, err := s.quests.GetByIDUnscoped(dbctx.New(ctx), id.CatalogID)
		if err != nil {
			return types.CatalogQuest{}, nil, fmt.Errorf("lookup quest: %w", err)
		}
		if q == nil {
			return types.CatalogQuest{}, nil, apierr.NotFound("quest_not_found", "unknown quest %s", id.Key())
		}
		return types.FromAdminQuest(q), q.ProfessionSlug, nil
	case types.IdentitySeed:
		for i, q := range s.seed.Quests(id.ProfessionSlug) {
			if normalization.NormalizeTitle(q.Title) == id.NormalizedTitle {
				slug := id.ProfessionSlug
				return types.FromSeedQuest(q, i), &slug, nil
			}
		}
	}
	return types.CatalogQuest{}, nil, apierr.NotFound("quest_not_found", "unknown quest %s", id.Key())
}

func (s *catalogService) ListMilestones(ctx context.Context, slug string) ([]*types.ProgressionMilestone, error) {
	if _, err := s.GetProfession(ctx, slug); err != nil {
		return nil, err
	}
	rows, err := s.milestones.ListByProfession(dbctx.New(ctx), slug)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return rows, nil
}

func (s *catalogService) Milestone(ctx context.Context, slug string, niveau int) (*types.ProgressionMilestone, error) {
	m, err := s.milestones.Get(dbctx.New(ctx), slug, niveau)
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (s *catalogService) AdminListProfessions(ctx context.Context) ([]*types.Profession, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	return s.ListProfessions(ctx, true)
}

func (s *catalogService) CreateProfession(ctx context.Context, in ProfessionInput) (*types.Profession, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, apierr.Invalid("invalid_profession", "label is required")
	}
	raw := strings.TrimSpace(in.Slug)
	if raw == "" {
		raw = label
	}
	slug := normalization.Slugify(raw)
	if slug == "" {
		return nil, apierr.Invalid("invalid_profession", "cannot derive a slug from %q", raw)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	var out *types.Profession
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.professions.GetBySlug(dbc, slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return apierr.Conflict("profession_exists", "profession %q already exists", slug)
		}
		tomb, err := s.professions.GetDeletedBySlug(dbc, slug)
		if err != nil {
			return err
		}
		if tomb != nil {
			if err := s.professions.Restore(dbc, tomb.ID, map[string]any{
				"label":       label,
				"icon":        strings.TrimSpace(in.Icon),
				"order_index": in.OrderIndex,
				"is_active":   active,
			}); err != nil {
				return err
			}
			out, err = s.professions.GetBySlug(dbc, slug)
			return err
		}
		out = &types.Profession{
			Slug:       slug,
			Label:      label,
			Icon:       strings.TrimSpace(in.Icon),
			OrderIndex: in.OrderIndex,
			IsActive:   active,
		}
		return s.professions.Create(dbc, out)
	})
	if err != nil {
		return nil, aggregates.MapError("CatalogService.CreateProfession", err)
	}
	s.catalogChanged(ctx)
	s.log.Info("profession created", "slug", slug)
	return out, nil
}

func (s *catalogService) UpdateProfession(ctx context.Context, slug string, in ProfessionPatch) (*types.Profession, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return nil, apierr.Invalid("invalid_profession", "label must not be empty")
		}
		updates["label"] = label
	}
	if in.Icon != nil {
		updates["icon"] = strings.TrimSpace(*in.Icon)
	}
	if in.OrderIndex != nil {
		updates["order_index"] = *in.OrderIndex
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	dbc := dbctx.New(ctx)
	existing, err := s.professions.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("get profession: %w", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("profession_not_found", "unknown profession %q", slug)
	}
	if err := s.professions.Update(dbc, slug, updates); err != nil {
		return nil, fmt.Errorf("update profession: %w", err)
	}
	s.catalogChanged(ctx)
	out, err := s.professions.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("reload profession: %w", err)
	}
	return out, nil
}

func (s *catalogService) DeleteProfession(ctx context.Context, slug string) error {
	if err := s.auth.Require(ctx); err != nil {
		return err
	}
	ok, err := s.professions.SoftDelete(dbctx.New(ctx), slug)
	if err != nil {
		return fmt.Errorf("delete profession: %w", err)
	}
	if !ok {
		return apierr.NotFound("profession_not_found", "unknown profession %q", slug)
	}
	s.catalogChanged(ctx)
	s.log.Info("profession deleted", "slug", slug)
	return nil
}

func (s *catalogService) ListAllQuests(ctx context.Context, f QuestFilter) ([]*types.Quest, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	filter := repos.QuestListFilter{GenericOnly: f.GenericOnly, IncludeDisabled: f.IncludeDisabled}
	if slug := strings.TrimSpace(f.ProfessionSlug); slug != "" {
		filter.ProfessionSlug = &slug
	}
	rows, err := s.quests.List(dbctx.New(ctx), filter)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	return rows, nil
}

func (s *catalogService) CreateQuest(ctx context.Context, in QuestInput) (*types.Quest, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	q := &types.Quest{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Type:         in.Type,
		PointsReward: in.PointsReward,
		Level:        in.Level,
		OrderIndex:   in.OrderIndex,
		IsEnabled:    true,
	}
	if q.Type == "" {
		q.Type = types.QuestTypeDaily
	}
	if q.Level == 0 {
		q.Level = 1
	}
	if in.IsEnabled != nil {
		q.IsEnabled = *in.IsEnabled
	}
	slug, err := s.questProfession(ctx, in.ProfessionSlug)
	if err != nil {
		return nil, err
	}
	q.ProfessionSlug = slug
	if err := s.validateQuest(q); err != nil {
		return nil, err
	}
	if err := s.quests.Create(dbctx.New(ctx), q); err != nil {
		return nil, fmt.Errorf("create quest: %w", err)
	}
	s.catalogChanged(ctx)
	s.log.Info("quest created", "quest_id", q.ID, "profession_slug", q.ProfessionSlug)
	return q, nil
}

func (s *catalogService) UpdateQuest(ctx context.Context, id uuid.UUID, in QuestPatch) (*types.Quest, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	q, err := s.quests.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get quest: %w", err)
	}
	if q == nil {
		return nil, apierr.NotFound("quest_not_found", "unknown quest %s", id)
	}

	if in.ProfessionSlug != nil {
		slug, err := s.questProfession(ctx, in.ProfessionSlug)
		if err != nil {
			return nil, err
		}
		q.ProfessionSlug = slug
	}
	if in.Title != nil {
		q.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		q.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		q.Type = *in.Type
	}
	if in.PointsReward != nil {
		q.PointsReward = *in.PointsReward
	}
	if in.Level != nil {
		q.Level = *in.Level
	}
	if in.OrderIndex != nil {
		q.OrderIndex = *in.OrderIndex
	}
	if in.IsEnabled != nil {
		q.IsEnabled = *in.IsEnabled
	}
	if err := s.validateQuest(q); err != nil {
		return nil, err
	}

	if err := s.quests.Update(dbc, id, map[string]any{
		"profession_slug": q.ProfessionSlug,
		"title":           q.Title,
		"description":     q.Description,
		"type":            q.Type,
		"points_reward":   q.PointsReward,
		"level":           q.Level,
		"order_index":     q.OrderIndex,
		"is_enabled":      q.IsEnabled,
	}); err != nil {
		return nil, fmt.Errorf("update quest: %w", err)
	}
	s.catalogChanged(ctx)
	return s.quests.GetByID(dbc, id)
}

func (s *catalogService) DeleteQuest(ctx context.Context, id uuid.UUID) error {
	if err := s.auth.Require(ctx); err != nil {
		return err
	}
	ok, err := s.quests.SoftDelete(dbctx.New(ctx), id)
	if err != nil {
		return fmt.Errorf("delete quest: %w", err)
	}
	if !ok {
		return apierr.NotFound("quest_not_found", "unknown quest %s", id)
	}
	s.catalogChanged(ctx)
	s.log.Info("quest deleted", "quest_id", id)
	return nil
}

func (s *catalogService) UpsertMilestone(ctx context.Context, slug string, niveau int, in MilestoneInput) (*types.ProgressionMilestone, error) {
	if err := s.auth.Require(ctx); err != nil {
		return nil, err
	}
	if niveau < 1 || niveau > s.tierMax {
		return nil, apierr.Invalid("invalid_milestone", "niveau must be within 1..%d", s.tierMax)
	}
	title := strings.TrimSpace(in.Title)
	objective := strings.TrimSpace(in.Objective)
	if title == "" || objective == "" {
		return nil, apierr.Invalid("invalid_milestone", "title and objective are required")
	}
	dbc := dbctx.New(ctx)
	p, err := s.professions.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("get profession: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profession_not_found", "unknown profession %q", slug)
	}
	order := niveau
	if in.OrderIndex != nil {
		order = *in.OrderIndex
	}
	if err := s.milestones.Upsert(dbc, &types.ProgressionMilestone{
		ProfessionSlug: slug,
		Niveau:         niveau,
		Title:          title,
		Icon:           strings.TrimSpace(in.Icon),
		Objective:      objective,
		Reward:         strings.TrimSpace(in.Reward),
		OrderIndex:     order,
	}); err != nil {
		return nil, fmt.Errorf("upsert milestone: %w", err)
	}
	return s.milestones.Get(dbc, slug, niveau)
}

func (s *catalogService) SeedIfEmpty(ctx context.Context) (int, error) {
	if s.seed == nil {
		return 0, nil
	}
	inserted := 0
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		n, err := s.professions.Count(dbc)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		profs := make([]*types.Profession, 0, len(s.seed.Professions))
		var milestones []*types.ProgressionMilestone
		for _, p := range s.seed.Professions {
			profs = append(profs, &types.Profession{
				Slug:       p.Slug,
				Label:      p.Label,
				Icon:       p.Icon,
				OrderIndex: p.OrderIndex,
				IsActive:   true,
			})
			for _, m := range p.Milestones {
				milestones = append(milestones, &types.ProgressionMilestone{
					ProfessionSlug: p.Slug,
					Niveau:         m.Niveau,
					Title:          m.Title,
					Icon:           m.Icon,
					Objective:      m.Objective,
					Reward:         m.Reward,
					OrderIndex:     m.Niveau,
				})
			}
		}
		created, err := s.professions.CreateManyIfAbsent(dbc, profs)
		if err != nil {
			return err
		}
		if _, err := s.milestones.CreateManyIfAbsent(dbc, milestones); err != nil {
			return err
		}
		inserted = int(created)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	if inserted > 0 {
		s.catalogChanged(ctx)
		s.log.Info("seed catalog loaded", "professions", inserted)
	}
	return inserted, nil
}

// questProfession normalizes a quest's profession reference. Nil or empty
// means generic; anything else must name an existing profession.
func (s *catalogService) questProfession(ctx context.Context, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	slug := strings.TrimSpace(*raw)
	if slug == "" {
		return nil, nil
	}
	p, err := s.professions.GetBySlug(dbctx.New(ctx), slug)
	if err != nil {
		return nil, fmt.Errorf("get profession: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profession_not_found", "unknown profession %q", slug)
	}
	return &slug, nil
}

func (s *catalogService) validateQuest(q *types.Quest) error {
	switch {
	case q.Title == "":
		return apierr.Invalid("invalid_quest", "title is required")
	case q.PointsReward <= 0:
		return apierr.Invalid("invalid_quest", "points_reward must be > 0")
	case q.Level < 1 || q.Level > s.tierMax:
		return apierr.Invalid("invalid_quest", "level must be within 1..%d", s.tierMax)
	case !q.Type.Valid():
		return apierr.Invalid("invalid_quest", "unknown quest type %q", q.Type)
	}
	return nil
}
