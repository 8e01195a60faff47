package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// ServiceConfig assembles a Service. Only Provider is required; every other
// field has a production default and exists for tests to substitute.
type ServiceConfig struct {
	Provider ProviderConfig

	// Store overrides credential persistence. Defaults to the OS keychain,
	// falling back to an in-memory store when no keychain is reachable.
	Store CredentialStore

	// Exchanger overrides the token-endpoint client.
	Exchanger TokenExchanger

	// Launcher overrides the browser launcher.
	Launcher Launcher

	// RefreshBuffer overrides DefaultRefreshBuffer when positive.
	RefreshBuffer time.Duration
}

// Service is the authentication entry point the rest of the CLI talks to.
// It wires the flow, the token manager, and the credential store together
// behind a handful of operations.
type Service struct {
	provider ProviderConfig
	flow     *Flow
	manager  *Manager
	client   *Client
}

// NewService validates the provider configuration and assembles a service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Provider.Validate(); err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		keyring := NewKeyringStore()
		if keyring.Available() {
			store = keyring
		} else {
			slog.Warn("OS keychain unavailable, session will not survive this process")
			store = NewMemoryStore()
		}
	}

	client := NewClient(nil)
	exchanger := cfg.Exchanger
	if exchanger == nil {
		exchanger = client
	}

	launcher := cfg.Launcher
	if launcher == nil {
		launcher = NewSystemBrowser()
	}

	flow := NewFlow(cfg.Provider, exchanger, launcher)
	manager := NewManager(ManagerConfig{
		Store:         store,
		Refresher:     flow,
		ClientID:      cfg.Provider.ClientID,
		RefreshBuffer: cfg.RefreshBuffer,
	})

	return &Service{
		provider: cfg.Provider,
		flow:     flow,
		manager:  manager,
		client:   client,
	}, nil
}

// Login runs the interactive browser flow and persists the resulting
// session. It fails with KindAlreadyAuthenticated when a valid session
// already exists; an unreadable existing session does not block a fresh
// login.
func (s *Service) Login(ctx context.Context, opts AuthorizeOptions) (*UserProfile, error) {
	existing, err := s.manager.ValidSession(ctx)
	if err != nil {
		slog.Debug("pre-login session check failed, proceeding with fresh login", "error", err)
	} else if existing != nil {
		return nil, NewError(KindAlreadyAuthenticated, "already logged in as "+existing.User.Email+", log out first")
	}

	token, err := s.flow.Authorize(ctx, opts)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileForToken(ctx, token)
	if err != nil {
		return nil, err
	}

	session := NewSession(*profile, token, s.provider.ClientID)
	if err := s.manager.SaveSession(session); err != nil {
		return nil, err
	}

	slog.Info("SECURITY_AUDIT: login completed", "session_id", session.Metadata.SessionID, "user_id", profile.ID)
	return profile, nil
}

// profileForToken resolves the user's identity: ID token claims when the
// provider issued one, the userinfo endpoint otherwise.
func (s *Service) profileForToken(ctx context.Context, token *oauth.Token) (*UserProfile, error) {
	if token.IDToken != "" {
		profile, err := ProfileFromIDToken(token.IDToken)
		if err == nil {
			return profile, nil
		}
		slog.Debug("falling back to userinfo endpoint", "error", err)
	}

	claims, err := s.client.Userinfo(ctx, s.provider.UserinfoEndpoint(), token.AccessToken)
	if err != nil {
		return nil, err
	}
	profile := profileFromClaims(claims)
	if profile.ID == "" {
		return nil, NewError(KindInvalidResponse, "userinfo response carries no subject claim")
	}
	return profile, nil
}

// Logout discards any stored session. Logging out while logged out is a
// successful no-op.
func (s *Service) Logout(ctx context.Context) error {
	return s.manager.ClearSession()
}

// Status returns the current session with a valid access token, refreshing
// if necessary, or nil when not logged in.
func (s *Service) Status(ctx context.Context) (*Session, error) {
	return s.manager.ValidSession(ctx)
}

// IsAuthenticated reports whether a usable session exists.
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	session, err := s.manager.ValidSession(ctx)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// Profile returns the logged-in user's profile, or KindNotAuthenticated.
func (s *Service) Profile(ctx context.Context) (*UserProfile, error) {
	session, err := s.manager.ValidSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NewError(KindNotAuthenticated, "not logged in, run 'pagelens auth login' first")
	}
	return &session.User, nil
}

// AccessToken returns a valid access token for API calls, or
// KindNotAuthenticated when no session exists.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	session, err := s.manager.ValidSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", NewError(KindNotAuthenticated, "not logged in, run 'pagelens auth login' first")
	}
	return session.Tokens.AccessToken, nil
}

// Cancel aborts an in-flight interactive login, e.g. on SIGINT.
func (s *Service) Cancel() {
	s.flow.Cancel()
}

var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// Default returns the process-wide service instance, or nil before
// SetDefault.
func Default() *Service {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultService
}

// SetDefault installs the process-wide service instance.
func SetDefault(s *Service) {
	defaultMu.Lock()
	defaultService = s
	defaultMu.Unlock()
}

// ResetDefault clears the process-wide instance. Intended for tests.
func ResetDefault() {
	SetDefault(nil)
}
