package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pagelens/pagelens/internal/auth"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), ExitCodeError},
		{"invalid config", auth.NewError(auth.KindInvalidConfig, "no client id"), ExitCodeError},
		{"not authenticated", auth.NewError(auth.KindNotAuthenticated, "not logged in"), ExitCodeAuthRequired},
		{"refresh failed", auth.NewError(auth.KindRefreshFailed, "revoked"), ExitCodeAuthRequired},
		{"user denied", auth.NewError(auth.KindUserDenied, "denied"), ExitCodeAuthFailed},
		{"timeout", auth.NewError(auth.KindTimeout, "timed out"), ExitCodeAuthFailed},
		{"cancelled", auth.NewError(auth.KindCancelled, "interrupted"), ExitCodeAuthFailed},
		{"wrapped kind", fmt.Errorf("login: %w", auth.NewError(auth.KindUserDenied, "denied")), ExitCodeAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "pagelens version 1.2.3") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestAuthCommandRegistered(t *testing.T) {
	for _, name := range []string{"login", "logout", "status", "whoami"} {
		found := false
		for _, sub := range authCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("auth subcommand %q is not registered", name)
		}
	}
}

func TestWriteStructured(t *testing.T) {
	payload := map[string]string{"status": "ok"}

	var out bytes.Buffer
	if err := writeStructured(&out, "json", payload); err != nil {
		t.Fatalf("json output failed: %v", err)
	}
	if !strings.Contains(out.String(), `"status": "ok"`) {
		t.Errorf("json output = %q", out.String())
	}

	out.Reset()
	if err := writeStructured(&out, "yaml", payload); err != nil {
		t.Fatalf("yaml output failed: %v", err)
	}
	if !strings.Contains(out.String(), "status: ok") {
		t.Errorf("yaml output = %q", out.String())
	}

	if err := writeStructured(&out, "xml", payload); err == nil {
		t.Error("unsupported format should fail")
	}
}
