package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iteebz/spacebrr-api/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_CLIENT_ID", "cid")
	t.Setenv("GITHUB_CLIENT_SECRET", "csecret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("STRIPE_PRICE_ID", "price_test")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "ghsecret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, 30, cfg.SessionRetentionDays)
	require.True(t, cfg.IsDev())
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestLoadRequiresWebhookSecrets(t *testing.T) {
	// An empty HMAC key would verify any forged delivery, so startup must
	// refuse it rather than register an unprotected webhook route.
	setRequiredEnv(t)
	t.Setenv("GITHUB_WEBHOOK_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GITHUB_WEBHOOK_SECRET")
}

func TestLoadRequiresPriceID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STRIPE_PRICE_ID", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "STRIPE_PRICE_ID")
}

func TestLoadRejectsNonPositiveRetention(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_RETENTION_DAYS", "0")

	_, err := config.Load()
	require.Error(t, err)
}

func TestAddrNormalizesPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", ":9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
}

func TestIsDev(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.False(t, cfg.IsDev())
}
