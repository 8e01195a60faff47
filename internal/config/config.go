// Package config loads CLI configuration from the environment. Everything
// has a working default except the OAuth client ID, which ships baked into
// release builds and is read from PAGELENS_OAUTH_CLIENT_ID otherwise.
package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/pagelens/pagelens/internal/auth"
)

// DefaultClientID is injected at build time for release binaries via
// -ldflags. Development builds set PAGELENS_OAUTH_CLIENT_ID instead.
var DefaultClientID = ""

// Config is the full environment-derived configuration.
type Config struct {
	// ClientID is the public OAuth client identifier.
	ClientID string `env:"PAGELENS_OAUTH_CLIENT_ID"`

	// BaseURL is the Pagelens API origin, which also hosts the identity
	// provider endpoints.
	BaseURL string `env:"PAGELENS_API_BASE_URL" envDefault:"https://api.pagelens.dev"`

	// Endpoint path overrides, for pointing at a local provider during
	// development.
	AuthorizePath string `env:"PAGELENS_OAUTH_AUTHORIZE_PATH" envDefault:"/oauth/authorize"`
	TokenPath     string `env:"PAGELENS_OAUTH_TOKEN_PATH" envDefault:"/oauth/token"`
	UserinfoPath  string `env:"PAGELENS_OAUTH_USERINFO_PATH" envDefault:"/oauth/userinfo"`

	// RedirectURI is the loopback redirect registered with the provider.
	// Its port anchors the range the callback listener probes.
	RedirectURI string `env:"PAGELENS_OAUTH_REDIRECT_URI" envDefault:"http://localhost:7189/callback"`

	// Scopes requested at login, space-separated.
	Scopes []string `env:"PAGELENS_OAUTH_SCOPES" envSeparator:" " envDefault:"openid profile email offline_access"`

	// LogLevel filters diagnostic output: debug, info, warn, or error.
	LogLevel string `env:"PAGELENS_LOG_LEVEL" envDefault:"warn"`
}

// Load reads the environment and validates the result. A missing client ID
// or malformed URL fails here, before any flow starts.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, auth.WrapError(auth.KindInvalidConfig, "failed to parse environment", err)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	provider := cfg.Provider()
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Provider maps the configuration onto the auth package's provider settings.
func (c *Config) Provider() auth.ProviderConfig {
	return auth.ProviderConfig{
		ClientID:      c.ClientID,
		BaseURL:       c.BaseURL,
		AuthorizePath: c.AuthorizePath,
		TokenPath:     c.TokenPath,
		UserinfoPath:  c.UserinfoPath,
		RedirectURI:   c.RedirectURI,
		Scopes:        c.Scopes,
	}
}
