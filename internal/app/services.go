package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
	"github.com/yungbote/recharge-backend/internal/data/seed"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/progression"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
	"github.com/yungbote/recharge-backend/internal/services"
)

type Services struct {
	Auth        services.AdminAuthorizer
	Catalog     services.CatalogService
	Assignment  services.AssignmentService
	Completion  services.CompletionService
	Progression services.ProgressionService
	Users       services.UserService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, eventBus bus.Bus, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	calc, err := progression.NewCalculator(cfg.Progression())
	if err != nil {
		return Services{}, fmt.Errorf("init calculator: %w", err)
	}
	seedCatalog, err := seed.Default()
	if err != nil {
		return Services{}, fmt.Errorf("load seed catalog: %w", err)
	}

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	assignAgg := aggregates.NewQuestAssignmentAggregate(aggregates.QuestAssignmentAggregateDeps{
		Base:        base,
		Users:       reposet.User,
		UserQuests:  reposet.UserQuest,
		Progression: reposet.Progression,
	})
	completeAgg := aggregates.NewQuestCompletionAggregate(aggregates.QuestCompletionAggregateDeps{
		Base:        base,
		Calculator:  calc,
		UserQuests:  reposet.UserQuest,
		Progression: reposet.Progression,
		Events:      reposet.Event,
	})

	auth := services.NewAdminAuthorizer(log, cfg.AdminEmails)
	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		DB:          db,
		Log:         log,
		Professions: reposet.Profession,
		Quests:      reposet.Quest,
		Milestones:  reposet.Milestone,
		Seed:        seedCatalog,
		Auth:        auth,
		Metrics:     metrics,
		TierMax:     calc.TierMax(),
		CacheSize:   cfg.CatalogCacheSize,
		CacheTTL:    cfg.CatalogCacheTTL,
		Bus:         eventBus,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init catalog service: %w", err)
	}

	assignment := services.NewAssignmentService(services.AssignmentServiceDeps{
		Log:        log,
		Catalog:    catalog,
		Users:      reposet.User,
		UserQuests: reposet.UserQuest,
		Aggregate:  assignAgg,
		Bus:        eventBus,
		Metrics:    metrics,
	})

	return Services{
		Auth:       auth,
		Catalog:    catalog,
		Assignment: assignment,
		Completion: services.NewCompletionService(services.CompletionServiceDeps{
			Log:       log,
			Catalog:   catalog,
			Users:     reposet.User,
			Aggregate: completeAgg,
			Bus:       eventBus,
			Metrics:   metrics,
		}),
		Progression: services.NewProgressionService(services.ProgressionServiceDeps{
			Log:         log,
			Calculator:  calc,
			Catalog:     catalog,
			Users:       reposet.User,
			Progression: reposet.Progression,
			Events:      reposet.Event,
		}),
		Users: services.NewUserService(services.UserServiceDeps{
			Log:        log,
			Users:      reposet.User,
			Catalog:    catalog,
			Assignment: assignment,
		}),
	}, nil
}
