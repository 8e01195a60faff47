package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGeneratePKCE(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE() failed: %v", err)
	}

	if pkce.CodeVerifier == "" {
		t.Error("CodeVerifier is empty")
	}
	if pkce.CodeChallenge == "" {
		t.Error("CodeChallenge is empty")
	}
	if pkce.CodeChallengeMethod != "S256" {
		t.Errorf("CodeChallengeMethod = %q, want S256", pkce.CodeChallengeMethod)
	}

	// The challenge must be the base64url-encoded SHA-256 of the verifier
	hash := sha256.Sum256([]byte(pkce.CodeVerifier))
	expected := base64.RawURLEncoding.EncodeToString(hash[:])
	if pkce.CodeChallenge != expected {
		t.Errorf("CodeChallenge = %q, want %q", pkce.CodeChallenge, expected)
	}
}

func TestGeneratePKCE_VerifierCharset(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE() failed: %v", err)
	}

	// Raw base64url output: unpadded, URL-safe alphabet only
	const allowed = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, r := range pkce.CodeVerifier {
		if !strings.ContainsRune(allowed, r) {
			t.Fatalf("CodeVerifier contains unexpected character %q", r)
		}
	}
	if strings.ContainsAny(pkce.CodeVerifier, "=+/") {
		t.Errorf("CodeVerifier contains padding or standard-alphabet characters: %q", pkce.CodeVerifier)
	}

	// 32 random bytes encode to 43 characters, within the RFC 7636 43-128 window
	if len(pkce.CodeVerifier) != 43 {
		t.Errorf("CodeVerifier length = %d, want 43", len(pkce.CodeVerifier))
	}
}

func TestGeneratePKCE_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pkce, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("GeneratePKCE() failed on iteration %d: %v", i, err)
		}
		if seen[pkce.CodeVerifier] {
			t.Errorf("duplicate code verifier on iteration %d", i)
		}
		seen[pkce.CodeVerifier] = true
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() failed: %v", err)
	}
	if state == "" {
		t.Error("state is empty")
	}
	if len(state) != 43 {
		t.Errorf("state length = %d, want 43", len(state))
	}
}

func TestGenerateState_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState() failed on iteration %d: %v", i, err)
		}
		if seen[state] {
			t.Errorf("duplicate state on iteration %d", i)
		}
		seen[state] = true
	}
}
