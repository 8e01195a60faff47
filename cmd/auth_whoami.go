package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authWhoamiCmd represents the auth whoami command
var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in identity",
	Long: `Show the profile of the currently logged-in user.

Fails with a non-zero exit code when no valid session exists.`,
	RunE: runAuthWhoami,
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	svc, err := ensureService()
	if err != nil {
		return err
	}

	profile, err := svc.Profile(cmd.Context())
	if err != nil {
		return err
	}

	if authOutput != "text" {
		return writeStructured(cmd.OutOrStdout(), authOutput, profile)
	}

	out := cmd.OutOrStdout()
	if profile.Name != "" {
		fmt.Fprintf(out, "Name:     %s\n", profile.Name)
	}
	if profile.Email != "" {
		fmt.Fprintf(out, "Email:    %s\n", profile.Email)
	}
	if profile.Organization != "" {
		fmt.Fprintf(out, "Org:      %s\n", profile.Organization)
	}
	fmt.Fprintf(out, "User ID:  %s\n", profile.ID)
	return nil
}
