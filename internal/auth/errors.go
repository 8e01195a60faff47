package auth

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication failure. Callers branch on kinds rather
// than concrete error types so the taxonomy stays stable across layers.
type Kind string

const (
	// KindNotAuthenticated means no valid session exists.
	KindNotAuthenticated Kind = "not_authenticated"

	// KindAlreadyAuthenticated means a login was attempted over a live session.
	KindAlreadyAuthenticated Kind = "already_authenticated"

	// KindTokenExpired means the access token has passed its expiry.
	KindTokenExpired Kind = "token_expired"

	// KindRefreshFailed means the provider rejected the refresh token itself,
	// so the user must log in again. Distinct from KindNetwork: a refresh
	// failure is terminal for the session, a network failure is retryable.
	KindRefreshFailed Kind = "refresh_failed"

	// KindNetwork covers transport failures and unexpected token-endpoint
	// responses (non-2xx status, malformed body).
	KindNetwork Kind = "network_error"

	// KindUserDenied means the user declined the authorization request at the
	// identity provider.
	KindUserDenied Kind = "user_denied"

	// KindInvalidResponse means the redirect carried parameters that do not
	// match the pending flow (state mismatch, missing code).
	KindInvalidResponse Kind = "invalid_response"

	// KindKeychain wraps failures of the OS credential store.
	KindKeychain Kind = "keychain_error"

	// KindBrowser means the system browser could not be opened; the
	// authorization URL should be presented for manual use.
	KindBrowser Kind = "browser_failed"

	// KindInvalidConfig means the OAuth configuration is unusable.
	KindInvalidConfig Kind = "invalid_config"

	// KindTimeout means a bounded wait elapsed without a result.
	KindTimeout Kind = "timeout"

	// KindCancelled means the operation was stopped before completing.
	KindCancelled Kind = "cancelled"
)

// Error is the error type raised by the authentication core. It carries a
// Kind for programmatic handling, a human-readable message, and the
// underlying cause when one exists. Messages never contain token material.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an Error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error that preserves err as its cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or the empty kind when err was not raised
// by this package.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
