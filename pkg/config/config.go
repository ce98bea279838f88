package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Trello       TrelloConfig
	Kommo        KommoConfig
	Sync         SyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PATIO_APP_ENV" required:"true"`
	Port         string `envconfig:"PATIO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PATIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PATIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PATIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PATIO_DB_DSN" required:"true"`
	Driver string `envconfig:"PATIO_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PATIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PATIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PATIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PATIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PATIO_REDIS_URL"`
	Address      string        `envconfig:"PATIO_REDIS_ADDR"`
	Password     string        `envconfig:"PATIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PATIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PATIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PATIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PATIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PATIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PATIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TrelloConfig carries board API credentials plus the list new cards land in.
type TrelloConfig struct {
	APIKey          string        `envconfig:"PATIO_TRELLO_API_KEY" required:"true"`
	Token           string        `envconfig:"PATIO_TRELLO_TOKEN" required:"true"`
	BoardID         string        `envconfig:"PATIO_TRELLO_BOARD_ID" required:"true"`
	BaseURL         string        `envconfig:"PATIO_TRELLO_BASE_URL" default:"https://api.trello.com/1"`
	ScheduledListID string        `envconfig:"PATIO_TRELLO_SCHEDULED_LIST_ID"`
	WebhookSecret   string        `envconfig:"PATIO_TRELLO_WEBHOOK_SECRET"`
	WebhookCallback string        `envconfig:"PATIO_TRELLO_WEBHOOK_CALLBACK_URL"`
	HTTPTimeout     time.Duration `envconfig:"PATIO_TRELLO_HTTP_TIMEOUT" default:"15s"`
}

// KommoConfig gates which CRM status change triggers board card creation.
type KommoConfig struct {
	TriggerPipeline string `envconfig:"PATIO_KOMMO_TRIGGER_PIPELINE" default:"Dr. Prime"`
	TriggerStatus   string `envconfig:"PATIO_KOMMO_TRIGGER_STATUS" default:"Agendamento Confirmado"`
}

type SyncConfig struct {
	IntervalMinutes int           `envconfig:"PATIO_SYNC_INTERVAL_MINUTES" default:"5"`
	LockTTL         time.Duration `envconfig:"PATIO_SYNC_LOCK_TTL" default:"10m"`
}

// Interval returns the reconciliation cadence as a duration.
func (s SyncConfig) Interval() time.Duration {
	minutes := s.IntervalMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PATIO_AUTO_MIGRATE" default:"false"`
}
