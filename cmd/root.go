package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/auth"
	"github.com/pagelens/pagelens/pkg/logging"
)

// Exit codes for CLI commands. These stay stable for scripting.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

var logLevel string

// rootCmd is the entry point when the application is called without
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "Audit web pages with the Pagelens agent",
	Long: `pagelens analyzes web pages for accessibility, performance, and content
issues using the Pagelens cloud agent. Most commands require a logged-in
session; run 'pagelens auth login' first.`,
	// Errors are reported by Execute with a semantic exit code; the usage
	// text would only add noise.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ParseLevel(logLevel), os.Stderr)
	},
}

// SetVersion injects the build version from the main package.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the build version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic exit code on
// failure. Called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "pagelens version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error kinds onto exit codes so scripts can distinguish
// "log in first" from a failed login attempt.
func getExitCode(err error) int {
	switch auth.KindOf(err) {
	case auth.KindNotAuthenticated, auth.KindTokenExpired, auth.KindRefreshFailed:
		return ExitCodeAuthRequired
	case auth.KindUserDenied, auth.KindTimeout, auth.KindCancelled, auth.KindBrowser, auth.KindInvalidResponse:
		return ExitCodeAuthFailed
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(newVersionCmd())
}
