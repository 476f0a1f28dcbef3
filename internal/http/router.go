package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/recharge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/recharge-backend/internal/http/middleware"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	CallTimeout time.Duration
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	IdentityHeader string

	HealthHandler     *httpH.HealthHandler
	ProfessionHandler *httpH.ProfessionHandler
	QuestHandler      *httpH.QuestHandler
	UserHandler       *httpH.UserHandler
	RealtimeHandler   *httpH.RealtimeHandler
	AdminHandler      *httpH.AdminHandler
}

const eventsRoute = "/api/users/:id/events"

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.CORS(cfg.CORSOrigins, cfg.IdentityHeader))
	r.Use(httpMW.Metrics(cfg.Metrics, eventsRoute))
	if cfg.AuthMiddleware != nil {
		r.Use(cfg.AuthMiddleware.AttachIdentity())
	}
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Realtime (SSE) stays outside the call timeout.
	if cfg.RealtimeHandler != nil {
		api.GET("/users/:id/events", cfg.RealtimeHandler.Stream)
	}

	bounded := api.Group("/")
	bounded.Use(httpMW.CallTimeout(cfg.CallTimeout))
	{
		if cfg.ProfessionHandler != nil {
			bounded.GET("/professions", cfg.ProfessionHandler.List)
			bounded.GET("/professions/:slug/quests", cfg.ProfessionHandler.Quests)
			bounded.POST("/professions/:slug/assign-quests/:userId", cfg.ProfessionHandler.AssignQuests)
			bounded.GET("/professions/:slug/progression", cfg.ProfessionHandler.Progression)
			bounded.GET("/professions/:slug/progression/full", cfg.ProfessionHandler.Progression)
			bounded.GET("/professions/:slug/milestones", cfg.ProfessionHandler.Milestones)
		}

		if cfg.QuestHandler != nil {
			bounded.POST("/quests/:questId/complete", cfg.QuestHandler.Complete)
		}

		if cfg.UserHandler != nil {
			bounded.POST("/users", cfg.UserHandler.Ensure)
			bounded.GET("/users/:id", cfg.UserHandler.Get)
			bounded.GET("/users/:id/quests", cfg.UserHandler.Quests)
			bounded.GET("/users/:id/progression-events", cfg.UserHandler.ProgressionEvents)
		}
	}

	if cfg.AdminHandler != nil {
		admin := bounded.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}
		admin.GET("/professions", cfg.AdminHandler.ListProfessions)
		admin.POST("/professions", cfg.AdminHandler.CreateProfession)
		admin.PUT("/professions/:slug", cfg.AdminHandler.UpdateProfession)
		admin.DELETE("/professions/:slug", cfg.AdminHandler.DeleteProfession)
		admin.PUT("/professions/:slug/milestones/:niveau", cfg.AdminHandler.UpsertMilestone)
		admin.GET("/quests", cfg.AdminHandler.ListQuests)
		admin.POST("/quests", cfg.AdminHandler.CreateQuest)
		admin.PUT("/quests/:id", cfg.AdminHandler.UpdateQuest)
		admin.DELETE("/quests/:id", cfg.AdminHandler.DeleteQuest)
		admin.POST("/users/:id/set-profession/:slug", cfg.AdminHandler.SetUserProfession)
	}

	return r
}
