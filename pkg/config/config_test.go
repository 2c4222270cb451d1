package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_ADMIN_USER", "admin")
	t.Setenv("AUTH_ADMIN_PASSWORD", "admin-pass")
	t.Setenv("AUTH_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
}

func TestDefaultsAndEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Unmarshal(New())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "sqlite", cfg.Database.Type)
	require.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
	require.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	require.Equal(t, "autotasking_auth", cfg.Auth.CookieName)
	require.Equal(t, 30*24*time.Hour, cfg.Auth.CookieTTL)
	require.Equal(t, time.Hour, cfg.Minio.SignedURLTTL)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLegacyLLMEnvNames(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := Unmarshal(New())
	require.NoError(t, err)
	require.Equal(t, "sk-openai", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cfg, err := Unmarshal(New())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AUTH.ADMIN_USER")
	require.Contains(t, err.Error(), "SESSION_SECRET")
	require.Contains(t, err.Error(), "LLM_API_KEY")
	require.Contains(t, err.Error(), "MINIO.ENDPOINT")
}

func TestValidateRejectsUnknownDatabase(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_TYPE", "oracle")

	cfg, err := Unmarshal(New())
	require.NoError(t, err)
	require.ErrorContains(t, cfg.Validate(), `unsupported DATABASE.TYPE "oracle"`)
}
