package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("APP_ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "patrimonio", cfg.JWTIssuer)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.Equal(t, 7*24*time.Hour, cfg.IdempotencyRetention)
	require.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsWeakSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "at least 32 bytes")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{JWTSecret: "0123456789abcdef0123456789abcdef", JWTTTL: time.Hour}
	require.ErrorContains(t, cfg.Validate(), "idempotency retention")

	cfg.IdempotencyRetention = time.Hour
	require.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	require.ErrorContains(t, cfg.Validate(), "jwt secret must be provided")
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	require.False(t, InTestMode())
}
