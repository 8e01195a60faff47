package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := NewError(KindNotAuthenticated, "not logged in")
	if err.Error() != "not logged in" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := WrapError(KindNetwork, "token request failed", errors.New("connection refused"))
	if wrapped.Error() != "token request failed: connection refused" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(KindKeychain, "store failed", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(NewError(KindUserDenied, "denied")); got != KindUserDenied {
		t.Errorf("KindOf = %q", got)
	}

	// Kind survives fmt.Errorf wrapping
	wrapped := fmt.Errorf("login failed: %w", NewError(KindTimeout, "timed out"))
	if got := KindOf(wrapped); got != KindTimeout {
		t.Errorf("KindOf through wrap = %q", got)
	}

	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf on plain error = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestIsKind(t *testing.T) {
	err := Errorf(KindRefreshFailed, "refresh rejected with status %d", 400)
	if !IsKind(err, KindRefreshFailed) {
		t.Error("IsKind should match the error's kind")
	}
	if IsKind(err, KindNetwork) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(nil, KindNetwork) {
		t.Error("IsKind(nil) should be false")
	}
}
