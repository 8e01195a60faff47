package auth

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// SessionVersion is bumped when the persisted layout changes incompatibly.
// Older versions are discarded and the user re-authenticates.
const SessionVersion = 1

// UserProfile holds the identity claims of the logged-in user.
type UserProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Organization  string `json:"organization,omitempty"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
}

// SessionMetadata records bookkeeping attached to a session.
type SessionMetadata struct {
	// SessionID is a random identifier minted at login, used to correlate
	// audit log lines without exposing token material.
	SessionID string    `json:"sessionId"`
	ClientID  string    `json:"clientId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session is the unit of persisted authentication state: the user's profile,
// the token set, and metadata. It is stored as a single credential entry.
type Session struct {
	Version  int             `json:"version"`
	User     UserProfile     `json:"user"`
	Tokens   oauth.Token     `json:"tokens"`
	Metadata SessionMetadata `json:"metadata"`
}

// NewSession builds a session around a freshly issued token set. The expiry
// is computed from the token's expires_in at call time.
func NewSession(user UserProfile, tokens *oauth.Token, clientID string) *Session {
	now := time.Now().UTC()
	return &Session{
		Version: SessionVersion,
		User:    user,
		Tokens:  *tokens,
		Metadata: SessionMetadata{
			SessionID: uuid.NewString(),
			ClientID:  clientID,
			CreatedAt: now,
			ExpiresAt: tokens.ExpiryFrom(now),
		},
	}
}

// Expired reports whether the access token expires within the given buffer,
// evaluated against the current clock on every call. A session without a
// recorded expiry never expires here; the server rejects it if it is stale.
func (s *Session) Expired(buffer time.Duration) bool {
	if s.Metadata.ExpiresAt.IsZero() {
		return false
	}
	return !s.Metadata.ExpiresAt.After(time.Now().Add(buffer))
}

// Encode serializes the session for storage.
func (s *Session) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", WrapError(KindKeychain, "failed to encode session", err)
	}
	return string(raw), nil
}

// DecodeSession parses a stored session, rejecting unknown layout versions.
func DecodeSession(raw string) (*Session, error) {
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, WrapError(KindKeychain, "failed to decode stored session", err)
	}
	if session.Version != SessionVersion {
		return nil, Errorf(KindKeychain, "unsupported session version %d", session.Version)
	}
	return &session, nil
}
