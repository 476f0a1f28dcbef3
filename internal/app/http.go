package app

import (
	"strings"

	httpserver "github.com/yungbote/recharge-backend/internal/http"
	httpH "github.com/yungbote/recharge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/recharge-backend/internal/http/middleware"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Profession *httpH.ProfessionHandler
	Quest      *httpH.QuestHandler
	User       *httpH.UserHandler
	Realtime   *httpH.RealtimeHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, cfg Config, svcs Services, hub *realtime.Hub, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Profession: httpH.NewProfessionHandler(log, svcs.Catalog, svcs.Assignment, svcs.Progression, cfg.AssignIdempotentDefault),
		Quest:      httpH.NewQuestHandler(log, svcs.Completion),
		User:       httpH.NewUserHandler(log, svcs.Users, svcs.Assignment, svcs.Progression),
		Realtime:   httpH.NewRealtimeHandler(log, hub, svcs.Users),
		Admin:      httpH.NewAdminHandler(log, svcs.Catalog, svcs.Assignment),
	}
}

func wireServer(log *logger.Logger, cfg Config, svcs Services, handlers Handlers, metrics *observability.Metrics) *httpserver.Server {
	header := strings.TrimSpace(cfg.AdminIdentityHeader)
	if header == "" {
		header = httpMW.DefaultIdentityHeader
	}
	rc := httpserver.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		CallTimeout:       cfg.DBCallTimeout,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, svcs.Auth, header, cfg.AdminJWTSecret),
		IdentityHeader:    header,
		HealthHandler:     handlers.Health,
		ProfessionHandler: handlers.Profession,
		QuestHandler:      handlers.Quest,
		UserHandler:       handlers.User,
		RealtimeHandler:   handlers.Realtime,
		AdminHandler:      handlers.Admin,
	}
	if cfg.MetricsEnabled {
		rc.Metrics = metrics
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return httpserver.NewServer(rc)
}
