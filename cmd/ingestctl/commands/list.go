package commands

import (
	"os"

	"github.com/ingestguard/ingestguard/cmd/ingestctl/cmdutil"
	"github.com/ingestguard/ingestguard/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded files",
	Long: `List every file previously uploaded by the current principal.

Examples:
  # List as a table
  ingestctl list

  # List as JSON
  ingestctl list -o json`,
	RunE: runList,
}

// fileList renders []apiclient.ListedFile as a table.
type fileList []apiclient.ListedFile

func (fl fileList) Headers() []string {
	return []string{"OBJECT ID", "NAME", "SIZE", "STATUS", "UPLOADED"}
}

func (fl fileList) Rows() [][]string {
	rows := make([][]string, 0, len(fl))
	for _, f := range fl {
		rows = append(rows, []string{
			f.ObjectID,
			f.OriginalFilename,
			formatBytes(f.OriginalSize),
			f.VerificationStatus,
			formatTimestampMs(f.TimestampMs),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	files, err := client.ListFiles()
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(os.Stdout, files, len(files) == 0, "No files found.", fileList(files))
}
