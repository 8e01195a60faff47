package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// verifierBytes is the number of random bytes for the PKCE code verifier.
	// 32 bytes (256 bits) encode to 43 base64url characters, the minimum
	// verifier length allowed by RFC 7636.
	verifierBytes = 32

	// stateBytes is the number of random bytes for the OAuth state parameter.
	// 32 bytes gives 256 bits of entropy, well above the 128-bit floor
	// required to make the state unguessable.
	stateBytes = 32

	// ChallengeMethodS256 is the only code challenge method this client uses.
	ChallengeMethodS256 = "S256"
)

// PKCEChallenge holds the PKCE parameters for a single authorization attempt.
// A fresh challenge is generated per flow and never persisted.
type PKCEChallenge struct {
	// CodeVerifier is the secret random string. Base64url encoding keeps it
	// within the unreserved charset [A-Za-z0-9-._~] required by RFC 7636.
	CodeVerifier string

	// CodeChallenge is BASE64URL(SHA256(CodeVerifier)), sent in the
	// authorization request.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and its S256 challenge.
// The only failure mode is the entropy source, which is fatal.
func GeneratePKCE() (*PKCEChallenge, error) {
	raw := make([]byte, verifierBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       base64.RawURLEncoding.EncodeToString(sum[:]),
		CodeChallengeMethod: ChallengeMethodS256,
	}, nil
}

// GenerateState generates a random state parameter binding the authorization
// response back to the request that produced it.
func GenerateState() (string, error) {
	raw := make([]byte, stateBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
