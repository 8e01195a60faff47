package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// sessionCache is a mutex-guarded slot for the in-process copy of the
// session, avoiding a keychain round-trip on every call.
type sessionCache struct {
	mu      sync.RWMutex
	session *Session
}

func (c *sessionCache) get() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *sessionCache) set(session *Session) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
}

// DefaultRefreshBuffer is how long before expiry a token is refreshed. A
// token valid for less than this is treated as already expired so requests
// in flight never carry a token that dies mid-request.
const DefaultRefreshBuffer = 5 * time.Minute

// Refresher exchanges a refresh token for a new token set. Flow implements
// it in production.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Store     CredentialStore
	Refresher Refresher
	ClientID  string

	// RefreshBuffer overrides DefaultRefreshBuffer when positive.
	RefreshBuffer time.Duration
}

// Manager owns the session lifecycle: persistence, expiry checks, and
// proactive refresh. Concurrent callers needing a refresh are collapsed into
// a single token-endpoint request.
type Manager struct {
	store     CredentialStore
	refresher Refresher
	clientID  string
	buffer    time.Duration

	cache        sessionCache
	refreshGroup singleflight.Group
}

// NewManager creates a manager around the given store and refresher.
func NewManager(cfg ManagerConfig) *Manager {
	buffer := cfg.RefreshBuffer
	if buffer <= 0 {
		buffer = DefaultRefreshBuffer
	}
	return &Manager{
		store:     cfg.Store,
		refresher: cfg.Refresher,
		clientID:  cfg.ClientID,
		buffer:    buffer,
	}
}

// ValidSession returns a session whose access token is valid beyond the
// refresh buffer, refreshing it first if needed. It returns (nil, nil) when
// no usable session exists, including after a definitive refresh rejection,
// which also clears the stored session. Transient refresh failures are
// returned as errors and leave the stored session untouched.
func (m *Manager) ValidSession(ctx context.Context) (*Session, error) {
	session, err := m.loadSession()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if !session.Expired(m.buffer) {
		return session, nil
	}

	refreshed, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		// A concurrent caller may have refreshed while this one waited.
		current, loadErr := m.loadSession()
		if loadErr != nil {
			return nil, loadErr
		}
		if current == nil {
			return nil, NewError(KindRefreshFailed, "session disappeared during refresh")
		}
		if !current.Expired(m.buffer) {
			return current, nil
		}
		return m.refreshSession(ctx, current)
	})
	if err != nil {
		if IsKind(err, KindRefreshFailed) {
			slog.Info("SECURITY_AUDIT: session invalidated after refresh rejection", "client_id", m.clientID)
			if clearErr := m.ClearSession(); clearErr != nil {
				slog.Warn("failed to clear rejected session", "error", clearErr)
			}
			return nil, nil
		}
		return nil, err
	}

	return refreshed.(*Session), nil
}

// refreshSession performs the actual refresh exchange and persists the
// resulting session.
func (m *Manager) refreshSession(ctx context.Context, old *Session) (*Session, error) {
	if old.Tokens.RefreshToken == "" {
		return nil, NewError(KindRefreshFailed, "session has no refresh token")
	}

	slog.Debug("refreshing access token", "session_id", old.Metadata.SessionID)
	token, err := m.refresher.RefreshToken(ctx, old.Tokens.RefreshToken)
	if err != nil {
		return nil, err
	}

	// Providers that do not rotate refresh tokens omit them from the
	// refresh response; keep the previous one.
	if token.RefreshToken == "" {
		token.RefreshToken = old.Tokens.RefreshToken
	}
	if token.IDToken == "" {
		token.IDToken = old.Tokens.IDToken
	}

	next := NewSession(old.User, token, m.clientID)
	if err := m.SaveSession(next); err != nil {
		return nil, err
	}

	slog.Info("SECURITY_AUDIT: access token refreshed", "session_id", next.Metadata.SessionID)
	return next, nil
}

// loadSession returns the cached session, falling back to the store. A
// corrupt stored session is discarded rather than wedging every command.
func (m *Manager) loadSession() (*Session, error) {
	if session := m.cache.get(); session != nil {
		return session, nil
	}

	raw, found, err := m.store.Get(ServiceName, SessionAccount)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	session, err := DecodeSession(raw)
	if err != nil {
		slog.Warn("discarding unreadable stored session", "error", err)
		if _, delErr := m.store.Delete(ServiceName, SessionAccount); delErr != nil {
			slog.Warn("failed to delete unreadable session", "error", delErr)
		}
		return nil, nil
	}

	m.cache.set(session)
	return session, nil
}

// SaveSession persists the session and updates the in-process cache.
func (m *Manager) SaveSession(session *Session) error {
	raw, err := session.Encode()
	if err != nil {
		return err
	}
	if err := m.store.Set(ServiceName, SessionAccount, raw); err != nil {
		return err
	}
	m.cache.set(session)
	slog.Info("SECURITY_AUDIT: session stored", "session_id", session.Metadata.SessionID, "expires_at", session.Metadata.ExpiresAt)
	return nil
}

// ClearSession removes any stored session. Idempotent: clearing an absent
// session succeeds.
func (m *Manager) ClearSession() error {
	m.cache.set(nil)
	deleted, err := m.store.Delete(ServiceName, SessionAccount)
	if err != nil {
		return err
	}
	if deleted {
		slog.Info("SECURITY_AUDIT: session cleared")
	}
	return nil
}
