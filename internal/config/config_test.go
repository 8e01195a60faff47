package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelens/pagelens/internal/auth"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PAGELENS_OAUTH_CLIENT_ID", "client-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "client-1", cfg.ClientID)
	assert.Equal(t, "https://api.pagelens.dev", cfg.BaseURL)
	assert.Equal(t, "http://localhost:7189/callback", cfg.RedirectURI)
	assert.Equal(t, []string{"openid", "profile", "email", "offline_access"}, cfg.Scopes)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAGELENS_OAUTH_CLIENT_ID", "client-1")
	t.Setenv("PAGELENS_API_BASE_URL", "http://localhost:8080")
	t.Setenv("PAGELENS_OAUTH_SCOPES", "openid email")
	t.Setenv("PAGELENS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, []string{"openid", "email"}, cfg.Scopes)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingClientID(t *testing.T) {
	t.Setenv("PAGELENS_OAUTH_CLIENT_ID", "")

	_, err := Load()
	assert.Equal(t, auth.KindInvalidConfig, auth.KindOf(err))
}

func TestConfig_Provider(t *testing.T) {
	t.Setenv("PAGELENS_OAUTH_CLIENT_ID", "client-1")

	cfg, err := Load()
	require.NoError(t, err)

	provider := cfg.Provider()
	assert.Equal(t, "client-1", provider.ClientID)
	assert.Equal(t, "https://api.pagelens.dev/oauth/token", provider.TokenEndpoint())
	assert.Equal(t, 7189, provider.CallbackPort())
}
