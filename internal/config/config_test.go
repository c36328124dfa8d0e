package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "sql", cfg.StoreDriver)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.False(t, cfg.AllowRegistration)
	require.False(t, cfg.AssistantEnabled())
	require.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("APP_ENV", "production")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.StoreDriver)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.True(t, cfg.AssistantEnabled())
	require.True(t, cfg.IsProduction())
}

func TestFromEnvRejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = FromEnv()
	require.Error(t, err)
}
