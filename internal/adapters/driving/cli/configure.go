package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store API credentials in the config file",
	Long: `Prompts for Rev API credentials and stores them in the config file.

Enter either a single combined key, or leave it empty to enter separate
client and user keys. Environment variables take precedence over stored
credentials at run time.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	if credentialWriter == nil {
		return errors.New("config service not configured")
	}

	cmd.Print("API key (leave empty to enter client/user keys): ")
	apiKey := readPassword()
	cmd.Println()

	var clientKey, userKey string
	if apiKey == "" {
		cmd.Print("Client API key: ")
		clientKey = readPassword()
		cmd.Println()

		cmd.Print("User API key: ")
		userKey = readPassword()
		cmd.Println()

		if clientKey == "" || userKey == "" {
			return errors.New("either an API key or both client and user keys are required")
		}
	}

	if err := credentialWriter.SaveCredentials(apiKey, clientKey, userKey); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	cmd.Printf("Credentials saved to %s\n", credentialWriter.Path())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
