package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// DefaultHTTPTimeout bounds every token-endpoint request.
const DefaultHTTPTimeout = 30 * time.Second

// ExchangeRequest carries the parameters of an authorization-code exchange.
type ExchangeRequest struct {
	TokenEndpoint string
	ClientID      string
	Code          string
	RedirectURI   string
	CodeVerifier  string
}

// RefreshRequest carries the parameters of a refresh-token exchange.
type RefreshRequest struct {
	TokenEndpoint string
	ClientID      string
	RefreshToken  string
}

// TokenExchanger performs token-endpoint exchanges. Client is the production
// implementation; tests substitute stubs.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, req ExchangeRequest) (*oauth.Token, error)
	Refresh(ctx context.Context, req RefreshRequest) (*oauth.Token, error)
}

// Client talks to the identity provider's token and userinfo endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client. A nil httpClient gets the default with a 30s
// timeout; requests never hang indefinitely.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{httpClient: httpClient}
}

// tokenErrorResponse is the RFC 6749 error body of a failed token request.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode exchanges an authorization code for a token set, proving
// possession of the PKCE verifier.
func (c *Client) ExchangeCode(ctx context.Context, req ExchangeRequest) (*oauth.Token, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {req.ClientID},
		"code":          {req.Code},
		"redirect_uri":  {req.RedirectURI},
		"code_verifier": {req.CodeVerifier},
	}

	return c.doTokenRequest(ctx, req.TokenEndpoint, data, false)
}

// Refresh obtains a new token set from a refresh token. A provider response
// indicating the refresh token itself is invalid or expired fails with a
// KindRefreshFailed error so callers can distinguish "must re-login" from a
// transient network failure.
func (c *Client) Refresh(ctx context.Context, req RefreshRequest) (*oauth.Token, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {req.ClientID},
		"refresh_token": {req.RefreshToken},
	}

	return c.doTokenRequest(ctx, req.TokenEndpoint, data, true)
}

// doTokenRequest performs a form-encoded POST against the token endpoint.
func (c *Client) doTokenRequest(ctx context.Context, endpoint string, data url.Values, refreshing bool) (*oauth.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, WrapError(KindNetwork, "failed to create token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(KindNetwork, "token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(KindNetwork, "failed to read token response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, tokenRequestError(resp.StatusCode, body, refreshing)
	}

	var token oauth.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, WrapError(KindNetwork, "failed to parse token response", err)
	}
	if token.AccessToken == "" {
		return nil, NewError(KindNetwork, "token response missing access_token")
	}

	return &token, nil
}

// tokenRequestError classifies a non-2xx token response. Only the provider's
// error code and description are surfaced, never request parameters.
func tokenRequestError(status int, body []byte, refreshing bool) error {
	var errResp tokenErrorResponse
	_ = json.Unmarshal(body, &errResp)

	if refreshing && errResp.Error == "invalid_grant" {
		message := "refresh token is invalid or expired"
		if errResp.ErrorDescription != "" {
			message = fmt.Sprintf("%s: %s", message, errResp.ErrorDescription)
		}
		return NewError(KindRefreshFailed, message)
	}

	if errResp.Error != "" {
		detail := errResp.Error
		if errResp.ErrorDescription != "" {
			detail = fmt.Sprintf("%s: %s", errResp.Error, errResp.ErrorDescription)
		}
		return Errorf(KindNetwork, "token request failed with status %d (%s)", status, detail)
	}

	return Errorf(KindNetwork, "token request failed with status %d", status)
}

// Userinfo fetches the OIDC userinfo claims with the given access token.
// Used when the provider issues no ID token.
func (c *Client) Userinfo(ctx context.Context, endpoint, accessToken string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, WrapError(KindNetwork, "failed to create userinfo request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(KindNetwork, "userinfo request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(KindNetwork, "failed to read userinfo response", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Debug("userinfo request rejected", "status", resp.StatusCode)
		return nil, Errorf(KindNetwork, "userinfo request failed with status %d", resp.StatusCode)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, WrapError(KindNetwork, "failed to parse userinfo response", err)
	}

	return claims, nil
}
