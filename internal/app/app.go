package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"

	"github.com/yungbote/recharge-backend/internal/data/db"
	httpserver "github.com/yungbote/recharge-backend/internal/http"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/realtime"
	"github.com/yungbote/recharge-backend/internal/realtime/bus"
	"github.com/yungbote/recharge-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Server   *httpserver.Server

	store        *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New builds the application from cfg. The caller owns the returned App and
// must Close it.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithLogger(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithLogger(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	store, err := db.Open(log, cfg.DBOptions())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.store = store
	a.DB = store.DB()
	if err := db.Migrate(a.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.RedisAddr != "" {
		a.Bus, err = bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Info("REDIS_ADDR not set, using in-process event bus")
		a.Bus = bus.NewMemoryBus()
	}

	a.Metrics = observability.NewMetrics(log)
	a.Hub = realtime.NewHub(log)
	a.Repos = wireRepos(a.DB, log)
	a.Services, err = wireServices(a.DB, log, cfg, a.Repos, a.Bus, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SeedOnBoot {
		n, err := a.Services.Catalog.SeedIfEmpty(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("Seeded catalog", "professions", n)
		}
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	a.Server = wireServer(log, cfg, a.Services, wireHandlers(log, cfg, a.Services, a.Hub, sqlDB), a.Metrics)
	return a, nil
}

// Start forwards bus messages to locally connected SSE clients and applies
// catalog invalidations from other instances.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if err := a.Bus.StartForwarder(ctx, services.RouteBusMessages(a.Services.Catalog, a.Hub.Broadcast)); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start bus forwarder: %w", err)
	}
	return nil
}

// Run starts the forwarder and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("Listening", "addr", addr)
	return a.Server.Run(ctx, addr, a.Cfg.ShutdownGrace)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownGrace)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	a.Log.Sync()
}
