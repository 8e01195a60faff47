package oauth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Token represents the set of credentials returned by the token endpoint.
// Tokens are immutable values: a refresh produces a new Token rather than
// mutating the old one.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds, as reported by the
	// provider at issuance time.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OIDC ID token, when the provider issues one.
	IDToken string `json:"id_token,omitempty"`

	// Scope is the granted scope(s), space-separated.
	Scope string `json:"scope,omitempty"`
}

// Scopes returns the granted scope as a slice of individual scopes.
func (t *Token) Scopes() []string {
	if t.Scope == "" {
		return nil
	}
	return strings.Fields(t.Scope)
}

// ExpiryFrom computes the absolute expiry of the access token given its
// issuance time. A zero time is returned for tokens without a lifetime.
func (t *Token) ExpiryFrom(issuedAt time.Time) time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// ToOAuth2Token converts the Token to an oauth2.Token so the session can be
// handed to golang.org/x/oauth2-based HTTP clients.
func (t *Token) ToOAuth2Token(issuedAt time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiryFrom(issuedAt),
	}

	if t.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": t.IDToken,
		})
	}

	return token
}
