package commands

import (
	"fmt"

	"github.com/ingestguard/ingestguard/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session token",
	Long: `Clear the stored session token for the current context.

This removes the session token but keeps the server URL and principal
for easy re-login.

Examples:
  # Logout from current context
  ingestctl logout`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		return fmt.Errorf("not logged in - no current context")
	}

	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Printf("Logged out from context: %s\n", contextName)
	return nil
}
