package auth

import (
	"net/url"
	"strconv"
	"strings"
)

// Default provider endpoints, relative to the API base URL.
const (
	DefaultAuthorizePath           = "/oauth/authorize"
	DefaultTokenPath               = "/oauth/token"
	DefaultUserinfoPath            = "/oauth/userinfo"
	DefaultOpenIDConfigurationPath = "/.well-known/openid-configuration"
)

// DefaultScopes requested when none are configured. offline_access asks the
// provider for a refresh token.
var DefaultScopes = []string{"openid", "profile", "email", "offline_access"}

// ProviderConfig identifies the OAuth provider and this public client.
type ProviderConfig struct {
	// ClientID is the public OAuth client identifier. No secret: this is a
	// native app and relies on PKCE instead.
	ClientID string

	// BaseURL is the provider origin, e.g. "https://api.pagelens.dev".
	BaseURL string

	// AuthorizePath, TokenPath and UserinfoPath override the default
	// endpoint paths when set.
	AuthorizePath string
	TokenPath     string
	UserinfoPath  string

	// RedirectURI is the registered loopback redirect,
	// e.g. "http://localhost:7189/callback". Its port anchors the port
	// range the callback listener probes.
	RedirectURI string

	// Scopes to request during authorization. Defaults to DefaultScopes.
	Scopes []string
}

// Validate checks the configuration is usable before any flow starts.
func (p *ProviderConfig) Validate() error {
	if strings.TrimSpace(p.ClientID) == "" {
		return NewError(KindInvalidConfig, "OAuth client ID is not configured")
	}
	if strings.TrimSpace(p.BaseURL) == "" {
		return NewError(KindInvalidConfig, "API base URL is not configured")
	}
	if _, err := url.Parse(p.BaseURL); err != nil {
		return WrapError(KindInvalidConfig, "invalid API base URL", err)
	}
	if p.RedirectURI != "" {
		if _, err := url.Parse(p.RedirectURI); err != nil {
			return WrapError(KindInvalidConfig, "invalid redirect URI", err)
		}
	}
	return nil
}

func (p *ProviderConfig) endpoint(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	return strings.TrimSuffix(p.BaseURL, "/") + path
}

// AuthorizeEndpoint returns the absolute authorization endpoint URL.
func (p *ProviderConfig) AuthorizeEndpoint() string {
	return p.endpoint(p.AuthorizePath, DefaultAuthorizePath)
}

// TokenEndpoint returns the absolute token endpoint URL.
func (p *ProviderConfig) TokenEndpoint() string {
	return p.endpoint(p.TokenPath, DefaultTokenPath)
}

// UserinfoEndpoint returns the absolute userinfo endpoint URL.
func (p *ProviderConfig) UserinfoEndpoint() string {
	return p.endpoint(p.UserinfoPath, DefaultUserinfoPath)
}

// RequestedScopes returns the configured scopes or the defaults.
func (p *ProviderConfig) RequestedScopes() []string {
	if len(p.Scopes) > 0 {
		return p.Scopes
	}
	return DefaultScopes
}

// CallbackPort returns the port of the registered redirect URI, or 0 when the
// URI is unset or carries no explicit port.
func (p *ProviderConfig) CallbackPort() int {
	u, err := url.Parse(p.RedirectURI)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0
	}
	return port
}

// CallbackPath returns the path of the registered redirect URI, or the
// default callback path.
func (p *ProviderConfig) CallbackPath() string {
	u, err := url.Parse(p.RedirectURI)
	if err != nil || u.Path == "" {
		return DefaultCallbackPath
	}
	return u.Path
}
