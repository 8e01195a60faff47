package oauth

import (
	"encoding/json"
	"testing"
	"time"
)

func TestToken_Scopes(t *testing.T) {
	token := &Token{Scope: "openid profile email"}
	scopes := token.Scopes()
	if len(scopes) != 3 {
		t.Fatalf("Scopes() returned %d entries, want 3", len(scopes))
	}
	if scopes[0] != "openid" || scopes[2] != "email" {
		t.Errorf("Scopes() = %v", scopes)
	}

	empty := &Token{}
	if got := empty.Scopes(); len(got) != 0 {
		t.Errorf("Scopes() on empty scope = %v, want empty", got)
	}
}

func TestToken_ExpiryFrom(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token := &Token{ExpiresIn: 3600}
	if got := token.ExpiryFrom(issued); !got.Equal(issued.Add(time.Hour)) {
		t.Errorf("ExpiryFrom() = %v, want %v", got, issued.Add(time.Hour))
	}

	// No expires_in means no known expiry
	noExpiry := &Token{}
	if got := noExpiry.ExpiryFrom(issued); !got.IsZero() {
		t.Errorf("ExpiryFrom() without expires_in = %v, want zero", got)
	}
}

func TestToken_JSONFieldNames(t *testing.T) {
	raw := `{"access_token":"at","token_type":"Bearer","expires_in":900,"refresh_token":"rt","id_token":"idt","scope":"openid"}`

	var token Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if token.AccessToken != "at" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
	if token.RefreshToken != "rt" {
		t.Errorf("RefreshToken = %q", token.RefreshToken)
	}
	if token.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d", token.ExpiresIn)
	}
}

func TestToken_ToOAuth2Token(t *testing.T) {
	issued := time.Now()
	token := &Token{
		AccessToken:  "at",
		TokenType:    "Bearer",
		ExpiresIn:    60,
		RefreshToken: "rt",
		IDToken:      "idt",
	}

	converted := token.ToOAuth2Token(issued)
	if converted.AccessToken != "at" || converted.RefreshToken != "rt" {
		t.Errorf("converted token = %+v", converted)
	}
	if got, ok := converted.Extra("id_token").(string); !ok || got != "idt" {
		t.Errorf("id_token extra = %v", converted.Extra("id_token"))
	}
	if !converted.Expiry.Equal(issued.Add(time.Minute)) {
		t.Errorf("Expiry = %v", converted.Expiry)
	}
}
