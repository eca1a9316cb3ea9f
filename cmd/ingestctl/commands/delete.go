package commands

import (
	"fmt"

	"github.com/ingestguard/ingestguard/cmd/ingestctl/cmdutil"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <object-id> <original-name>",
	Short: "Delete an uploaded file",
	Long: `Delete a previously uploaded file, identified by its object ID and the
original filename it was uploaded under.

Examples:
  # Delete with confirmation prompt
  ingestctl delete 3f29f9b2-... report.pdf

  # Delete without prompting
  ingestctl delete 3f29f9b2-... report.pdf --force`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	objectID, originalName := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("file", originalName, deleteForce, func() error {
		result, err := client.DeleteFile(objectID, originalName)
		if err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		if !result.Found {
			return fmt.Errorf("no matching file found for object %s", objectID)
		}
		return nil
	})
}
