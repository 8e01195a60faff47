package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show whether a valid Pagelens session exists and when it expires.

A session whose access token is about to expire is refreshed before being
reported, so "authenticated" here means subsequent commands will work.
Token material is never printed.

Examples:
  pagelens auth status                 # Human-readable status
  pagelens auth status --output json   # Machine-readable status`,
	RunE: runAuthStatus,
}

// statusReport is the structured form of the status output. Tokens are
// deliberately absent.
type statusReport struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	User          string     `json:"user,omitempty" yaml:"user,omitempty"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty"`
	Organization  string     `json:"organization,omitempty" yaml:"organization,omitempty"`
	SessionID     string     `json:"sessionId,omitempty" yaml:"sessionId,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	svc, err := ensureService()
	if err != nil {
		return err
	}

	session, err := svc.Status(cmd.Context())
	if err != nil {
		return err
	}

	report := statusReport{}
	if session != nil {
		expires := session.Metadata.ExpiresAt
		report = statusReport{
			Authenticated: true,
			User:          session.User.Name,
			Email:         session.User.Email,
			Organization:  session.User.Organization,
			SessionID:     session.Metadata.SessionID,
			ExpiresAt:     &expires,
		}
	}

	if authOutput != "text" {
		return writeStructured(cmd.OutOrStdout(), authOutput, report)
	}

	out := cmd.OutOrStdout()
	if !report.Authenticated {
		fmt.Fprintf(out, "Status:   %s\n", text.FgYellow.Sprint("Not logged in"))
		fmt.Fprintln(out, "Run: pagelens auth login")
		return nil
	}

	fmt.Fprintf(out, "Status:   %s\n", text.FgGreen.Sprint("Authenticated"))
	if report.Email != "" {
		fmt.Fprintf(out, "Account:  %s\n", report.Email)
	}
	if report.Organization != "" {
		fmt.Fprintf(out, "Org:      %s\n", report.Organization)
	}
	if report.ExpiresAt != nil && !report.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires:  %s (%s)\n", report.ExpiresAt.Local().Format(time.RFC1123), formatUntil(*report.ExpiresAt))
	}
	return nil
}

// formatUntil renders the time remaining until expiry, e.g. "in 58m".
func formatUntil(t time.Time) string {
	remaining := time.Until(t).Round(time.Minute)
	if remaining <= 0 {
		return "expiring"
	}
	return "in " + remaining.String()
}
