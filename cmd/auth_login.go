package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/auth"
)

// Login-specific flags
var (
	loginNoBrowser bool
	loginTimeout   time.Duration
)

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Pagelens",
	Long: `Log in to Pagelens using an OAuth browser flow.

This command opens your browser at the Pagelens authorization page and waits
for you to approve the request. The resulting session is stored in the OS
keychain and reused by subsequent commands until it expires or you log out.

Examples:
  pagelens auth login                  # Log in via the browser
  pagelens auth login --no-browser     # Print the URL instead of opening it
  pagelens auth login --timeout 2m     # Give up after two minutes`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	authLoginCmd.Flags().DurationVar(&loginTimeout, "timeout", auth.DefaultCallbackTimeout, "How long to wait for the browser redirect")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	svc, err := ensureService()
	if err != nil {
		return err
	}

	// Ctrl+C aborts the wait cleanly instead of leaving the listener bound.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	spin.Suffix = " Waiting for browser authorization..."

	opts := auth.AuthorizeOptions{
		Timeout:   loginTimeout,
		NoBrowser: loginNoBrowser,
		OnAuthURL: func(authURL string) {
			if loginNoBrowser {
				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Opening your browser to complete the login.\nIf nothing happens, open this URL manually:\n\n  %s\n\n", authURL)
			}
			spin.Start()
		},
		OnBrowserError: func(browserErr error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s %v\n", text.FgYellow.Sprint("warning:"), browserErr)
		},
	}

	profile, err := svc.Login(ctx, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	identity := profile.Email
	if identity == "" {
		identity = profile.ID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s\n", text.FgGreen.Sprint("✓"), identity)
	return nil
}
