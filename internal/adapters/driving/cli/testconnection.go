package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify API credentials and connectivity",
	Long: `Performs a minimal authenticated request against the API to verify
that the configured credentials work.`,
	RunE: runTestConnection,
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
}

func runTestConnection(cmd *cobra.Command, _ []string) error {
	if connectionTester == nil {
		return errors.New("credentials not configured: run 'revsync configure' or set REV_API_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd.Print("Testing connection... ")
	if err := connectionTester.TestConnection(ctx); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("connection test failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}
