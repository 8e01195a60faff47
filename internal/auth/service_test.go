package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// loginExchanger issues a token set carrying a parseable ID token.
type loginExchanger struct {
	t         *testing.T
	expiresIn int
}

func (e *loginExchanger) ExchangeCode(ctx context.Context, req ExchangeRequest) (*oauth.Token, error) {
	expiresIn := e.expiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	return &oauth.Token{
		AccessToken:  "at",
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		RefreshToken: "rt",
		IDToken: signedTestToken(e.t, jwt.MapClaims{
			"sub":   "user-1",
			"email": "dev@example.com",
			"name":  "Dev Example",
		}),
	}, nil
}

func (e *loginExchanger) Refresh(ctx context.Context, req RefreshRequest) (*oauth.Token, error) {
	return &oauth.Token{AccessToken: "refreshed-at", ExpiresIn: 3600, RefreshToken: "rt"}, nil
}

// loginService builds a service wired to an in-memory store and a browser
// simulator that approves immediately.
func loginService(t *testing.T, store CredentialStore) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Provider:  testProvider("https://provider.example"),
		Store:     store,
		Exchanger: &loginExchanger{t: t},
		Launcher:  &browserSim{t: t, code: "code"},
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_InvalidConfig(t *testing.T) {
	_, err := NewService(ServiceConfig{Provider: ProviderConfig{BaseURL: "https://provider.example"}})
	assert.Equal(t, KindInvalidConfig, KindOf(err))

	_, err = NewService(ServiceConfig{Provider: ProviderConfig{ClientID: "client-1"}})
	assert.Equal(t, KindInvalidConfig, KindOf(err))
}

func TestService_LoginLogoutCycle(t *testing.T) {
	store := NewMemoryStore()
	svc := loginService(t, store)
	ctx := context.Background()

	ok, err := svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	profile, err := svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "dev@example.com", profile.Email)

	ok, err = svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// The session landed in the store
	raw, found, err := store.Get(ServiceName, SessionAccount)
	require.NoError(t, err)
	require.True(t, found)
	session, err := DecodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", session.User.Email)

	require.NoError(t, svc.Logout(ctx))

	ok, err = svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Login_AlreadyAuthenticated(t *testing.T) {
	svc := loginService(t, NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	assert.Equal(t, KindAlreadyAuthenticated, KindOf(err))
}

func TestService_Logout_WhileLoggedOut(t *testing.T) {
	svc := loginService(t, NewMemoryStore())
	ctx := context.Background()

	// Repeated logouts are all successful no-ops
	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))
}

func TestService_Profile(t *testing.T) {
	svc := loginService(t, NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Profile(ctx)
	assert.Equal(t, KindNotAuthenticated, KindOf(err))

	_, err = svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dev Example", profile.Name)
}

func TestService_AccessToken(t *testing.T) {
	svc := loginService(t, NewMemoryStore())
	ctx := context.Background()

	_, err := svc.AccessToken(ctx)
	assert.Equal(t, KindNotAuthenticated, KindOf(err))

	_, err = svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	token, err := svc.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at", token)
}

func TestService_Status_RefreshesExpiringSession(t *testing.T) {
	store := NewMemoryStore()
	svc, err := NewService(ServiceConfig{
		Provider: testProvider("https://provider.example"),
		Store:    store,
		// Tokens expire inside the refresh buffer immediately
		Exchanger: &loginExchanger{t: t, expiresIn: 60},
		Launcher:  &browserSim{t: t, code: "code"},
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Login(ctx, AuthorizeOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	session, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "refreshed-at", session.Tokens.AccessToken)
}

func TestDefaultService(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	assert.Nil(t, Default())

	svc := loginService(t, NewMemoryStore())
	SetDefault(svc)
	assert.Same(t, svc, Default())
}
