package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of Pagelens",
	Long: `Discard the stored Pagelens session.

This command removes the session from the OS keychain, requiring a new
'pagelens auth login' before authenticated commands work again. Logging out
while already logged out is not an error.`,
	RunE: runAuthLogout,
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	svc, err := ensureService()
	if err != nil {
		return err
	}

	if err := svc.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}
