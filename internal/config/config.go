// Package config loads runtime settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// StoreDriver selects the ledger backend: "sql" or "redis".
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sql"`
	DBDSN       string `envconfig:"DB_DSN" default:"sqlite:pos.db"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"pos_"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	CORSOrigins       []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	AllowRegistration bool     `envconfig:"ALLOW_REGISTRATION" default:"false"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	BackupDir  string `envconfig:"BACKUP_DIR" default:"backups"`
	BackupCron string `envconfig:"BACKUP_CRON" default:"@daily"`
}

// Load reads .env when present and then the process environment.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && log != nil {
		log.Warn("no .env file found")
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET must be provided")
	}
	switch cfg.StoreDriver {
	case "sql", "redis":
	default:
		return nil, errors.New("STORE_DRIVER must be sql or redis")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AssistantEnabled reports whether a Gemini key was configured.
func (c *Config) AssistantEnabled() bool {
	return c != nil && c.GeminiAPIKey != ""
}
