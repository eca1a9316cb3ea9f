package commands

import (
	"fmt"
	"net/url"

	"github.com/ingestguard/ingestguard/cmd/ingestctl/cmdutil"
	"github.com/ingestguard/ingestguard/internal/cli/credentials"
	"github.com/ingestguard/ingestguard/internal/cli/prompt"
	"github.com/ingestguard/ingestguard/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	loginServer     string
	loginEmail      string
	loginPassphrase string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with an ingestd server",
	Long: `Authenticate with an ingestd server and store the resulting session token.

On first login, you must specify the server URL. Subsequent logins will
use the stored server URL unless overridden.

Examples:
  # First login to a server
  ingestctl login --server http://localhost:8080 --email alice@example.com

  # Re-login to the stored server
  ingestctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required on first login)")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Principal email")
	loginCmd.Flags().StringVar(&loginPassphrase, "passphrase", "", "Passphrase")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	serverURLStr := loginServer
	if serverURLStr == "" {
		ctx, err := store.GetCurrentContext()
		if err != nil || ctx == nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  ingestctl login --server http://localhost:8080")
		}
		serverURLStr = ctx.ServerURL
	}

	parsedURL, err := url.Parse(serverURLStr)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURLStr = parsedURL.String()
	}

	email := loginEmail
	if email == "" {
		email, err = prompt.InputRequired("Email")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	passphrase := loginPassphrase
	if passphrase == "" {
		passphrase, err = prompt.PasswordWithValidation("Passphrase", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	client := apiclient.New(serverURLStr)

	fmt.Printf("Logging in to %s as %s...\n", serverURLStr, email)
	resp, err := client.ValidatePassphrase(email, passphrase)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		contextName = credentials.GenerateContextName(serverURLStr)
	}

	ctx := &credentials.Context{
		ServerURL:    serverURLStr,
		Principal:    email,
		SessionToken: resp.Token,
	}

	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to set current context: %w", err)
	}

	fmt.Printf("Logged in successfully as %s\n", email)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())
	return nil
}
