package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/recharge-backend/internal/data/db"
	"github.com/yungbote/recharge-backend/internal/observability"
	"github.com/yungbote/recharge-backend/internal/platform/config"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/progression"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogRedact   bool   `env:"LOG_REDACT" envDefault:"false"`
	LogHashSalt string `env:"LOG_HASH_SALT"`

	DBDriver         string        `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string        `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD"`
	PostgresName     string        `env:"POSTGRES_NAME" envDefault:"recharge"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath       string        `env:"SQLITE_PATH"`
	DBCallTimeout    time.Duration `env:"DB_CALL_TIMEOUT" envDefault:"5s"`

	AdminEmails         []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminIdentityHeader string   `env:"ADMIN_IDENTITY_HEADER" envDefault:"X-User-Email"`
	AdminJWTSecret      string   `env:"ADMIN_JWT_SECRET"`

	LevelThreshold int   `env:"LEVEL_THRESHOLD" envDefault:"100"`
	TierMax        int   `env:"TIER_MAX" envDefault:"5"`
	TierThresholds []int `env:"TIER_THRESHOLDS" envSeparator:","`

	// Assignment without ?idempotent keeps the legacy duplicating behavior
	// unless this is set.
	AssignIdempotentDefault bool          `env:"ASSIGN_IDEMPOTENT_DEFAULT" envDefault:"false"`
	SeedOnBoot              bool          `env:"SEED_ON_BOOT" envDefault:"true"`
	CatalogCacheSize        int           `env:"CATALOG_CACHE_SIZE" envDefault:"256"`
	CatalogCacheTTL         time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"recharge.progression"`

	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:","`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`

	Otel observability.OtelConfig
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DBDriver)
	}
	if _, err := progression.NewCalculator(c.Progression()); err != nil {
		return fmt.Errorf("progression config: %w", err)
	}
	return nil
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:     c.LogMode,
		Level:    c.LogLevel,
		Redact:   c.LogRedact,
		HashSalt: c.LogHashSalt,
	}
}

func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:     strings.ToLower(strings.TrimSpace(c.DBDriver)),
		Host:       c.PostgresHost,
		Port:       c.PostgresPort,
		User:       c.PostgresUser,
		Password:   c.PostgresPassword,
		Name:       c.PostgresName,
		SSLMode:    c.PostgresSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

func (c Config) Progression() progression.Config {
	return progression.Config{
		LevelThreshold: c.LevelThreshold,
		TierMax:        c.TierMax,
		Thresholds:     c.TierThresholds,
	}
}
