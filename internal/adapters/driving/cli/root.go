// Package cli implements the command-line driving adapter.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/revsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// version is the build version, overridable at link time.
var version = "0.1.0"

// Services wired by the composition root before Execute. Package variables
// so tests can stub them.
var (
	newSyncRunner    SyncRunnerFactory
	connectionTester driving.ConnectionTester
	credentialWriter driving.CredentialWriter
)

// SyncRunnerFactory builds a sync runner rooted at an export directory,
// together with a release function for the resources the runner holds.
type SyncRunnerFactory func(outputDir string) (driving.SyncRunner, func() error, error)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "revsync",
	Short: "Mirror Rev.com orders and attachments to a local directory",
	Long: `revsync synchronises a Rev.com account to a local export tree.

Completed orders are enumerated page by page; each order's metadata and
attachments (media, transcripts, captions) are downloaded into a per-order
directory. Attachments already downloaded are skipped, so interrupted runs
resume where they left off.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Wire installs the concrete services. Called once by the composition root.
func Wire(factory SyncRunnerFactory, tester driving.ConnectionTester, creds driving.CredentialWriter) {
	newSyncRunner = factory
	connectionTester = tester
	credentialWriter = creds
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
