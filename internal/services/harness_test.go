package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	"github.com/yungbote/recharge-backend/internal/data/repos"
	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	"github.com/yungbote/recharge-backend/internal/data/seed"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/progression"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
)

const testAdminEmail = "admin@example.com"

type harness struct {
	db          *gorm.DB
	log         *logger.Logger
	seed        *seed.Catalog
	bus         *bus.MemoryBus
	metrics     *observability.Metrics
	catalog     CatalogService
	assignment  AssignmentService
	completion  CompletionService
	progression ProgressionService
	users       UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics(log)
	memBus := bus.NewMemoryBus()
	calc := progression.MustCalculator(progression.NewDefaultConfig())
	seedCatalog, err := seed.Default()
	require.NoError(t, err)

	userRepo := repos.NewUserRepo(db, log)
	userQuests := repos.NewUserQuestRepo(db, log)
	progressionRepo := repos.NewUserProgressionRepo(db, log)
	eventRepo := repos.NewProgressionEventRepo(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}

	catalog, err := NewCatalogService(CatalogServiceDeps{
		DB:          db,
		Log:         log,
		Professions: repos.NewProfessionRepo(db, log),
		Quests:      repos.NewQuestRepo(db, log),
		Milestones:  repos.NewMilestoneRepo(db, log),
		Seed:        seedCatalog,
		Auth:        NewAdminAuthorizer(log, []string{testAdminEmail}),
		Metrics:     metrics,
		TierMax:     calc.TierMax(),
	})
	require.NoError(t, err)
	_, err = catalog.SeedIfEmpty(context.Background())
	require.NoError(t, err)

	assignment := NewAssignmentService(AssignmentServiceDeps{
		Log:        log,
		Catalog:    catalog,
		Users:      userRepo,
		UserQuests: userQuests,
		Aggregate: aggregates.NewQuestAssignmentAggregate(aggregates.QuestAssignmentAggregateDeps{
			Base:        base,
			Users:       userRepo,
			UserQuests:  userQuests,
			Progression: progressionRepo,
		}),
		Bus:     memBus,
		Metrics: metrics,
	})
	completion := NewCompletionService(CompletionServiceDeps{
		Log:     log,
		Catalog: catalog,
		Users:   userRepo,
		Aggregate: aggregates.NewQuestCompletionAggregate(aggregates.QuestCompletionAggregateDeps{
			Base:        base,
			Calculator:  calc,
			UserQuests:  userQuests,
			Progression: progressionRepo,
			Events:      eventRepo,
		}),
		Bus:     memBus,
		Metrics: metrics,
	})

	return &harness{
		db:         db,
		log:        log,
		seed:       seedCatalog,
		bus:        memBus,
		metrics:    metrics,
		catalog:    catalog,
		assignment: assignment,
		completion: completion,
		progression: NewProgressionService(ProgressionServiceDeps{
			Log:         log,
			Calculator:  calc,
			Catalog:     catalog,
			Users:       userRepo,
			Progression: progressionRepo,
			Events:      eventRepo,
		}),
		users: NewUserService(UserServiceDeps{
			Log:        log,
			Users:      userRepo,
			Catalog:    catalog,
			Assignment: assignment,
		}),
	}
}

// catalogReplica is a second CatalogService over the harness store, as a
// separate API instance would run it.
func (h *harness) catalogReplica(t *testing.T, b bus.Bus, ttl time.Duration) CatalogService {
	t.Helper()
	c, err := NewCatalogService(CatalogServiceDeps{
		DB:          h.db,
		Log:         h.log,
		Professions: repos.NewProfessionRepo(h.db, h.log),
		Quests:      repos.NewQuestRepo(h.db, h.log),
		Milestones:  repos.NewMilestoneRepo(h.db, h.log),
		Seed:        h.seed,
		Auth:        NewAdminAuthorizer(h.log, []string{testAdminEmail}),
		CacheTTL:    ttl,
		Bus:         b,
	})
	require.NoError(t, err)
	return c
}

func adminCtx() context.Context {
	return ctxutil.WithIdentity(context.Background(), &ctxutil.Identity{Email: testAdminEmail, Source: "header"})
}

func ptr[T any](v T) *T { return &v }
