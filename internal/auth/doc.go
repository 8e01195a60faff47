// Package auth implements the CLI's authentication subsystem: the OAuth 2.0
// authorization code flow with PKCE against the Pagelens identity provider,
// session persistence in the OS keychain, and proactive token refresh.
//
// The entry point is Service, which exposes login, logout, status, and
// profile operations to the command layer. Underneath, Flow drives a single
// interactive authorization (loopback callback listener, browser launch,
// code exchange) and Manager owns the stored session's lifecycle.
//
// All failures surface as *Error values carrying a Kind, so callers can
// branch on the failure class without parsing messages.
package auth
