package cmd

import (
	"github.com/spf13/cobra"
)

// Shared auth flags
var (
	authOutput string
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for pagelens",
	Long: `Manage the pagelens login session.

The auth command group provides subcommands to log in, log out, and inspect
the current session. pagelens authenticates against the Pagelens identity
provider with an OAuth browser flow; tokens are stored in the OS keychain
and refreshed automatically.

Examples:
  pagelens auth login                  # Log in via the browser
  pagelens auth login --no-browser     # Print the URL instead of opening it
  pagelens auth status                 # Show session status
  pagelens auth status --output json   # Machine-readable status
  pagelens auth whoami                 # Show the logged-in identity
  pagelens auth logout                 # Discard the stored session`,
}

func init() {
	authCmd.PersistentFlags().StringVarP(&authOutput, "output", "o", "text", "Output format: text, json, or yaml")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authWhoamiCmd)
}
