// Package oauth provides the protocol-level building blocks for the OAuth 2.0
// Authorization Code flow with PKCE used by the Pagelens CLI.
//
// The package is deliberately free of I/O: it covers PKCE verifier/challenge
// generation, state generation, and the token value type returned by the
// identity provider's token endpoint. The flow orchestration, local callback
// listener, and credential persistence live in internal/auth.
package oauth
