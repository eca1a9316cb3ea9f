package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ingestguard/ingestguard/cmd/ingestctl/cmdutil"
	"github.com/ingestguard/ingestguard/internal/cli/credentials"
	"github.com/ingestguard/ingestguard/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var (
	uploadPassphrase string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file through the ingest pipeline",
	Long: `Upload a file to ingestd. The file is encrypted envelope-style before it
ever reaches object storage.

Examples:
  # Upload a file, prompting for the passphrase
  ingestctl upload ./report.pdf

  # Upload with the passphrase on the command line (less secure)
  ingestctl upload ./report.pdf --passphrase "correct horse"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadPassphrase, "passphrase", "", "Passphrase (prompted if omitted)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	ctx, err := store.GetCurrentContext()
	if err != nil || ctx.Principal == "" {
		return credentials.ErrNotLoggedIn
	}

	passphrase := uploadPassphrase
	if passphrase == "" {
		passphrase, err = prompt.PasswordWithValidation("Passphrase", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	filename := filepath.Base(path)
	fmt.Printf("Uploading %s...\n", filename)
	result, err := client.Upload(ctx.Principal, passphrase, filename, f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Object ID:  %s\n", result.ObjectID)
	fmt.Printf("Status:     %s\n", result.VerificationStatus)
	return nil
}
