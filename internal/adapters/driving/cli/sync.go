package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driving"
)

var syncFlags struct {
	outputDir          string
	since              string
	dryRun             bool
	includeMedia       bool
	includeTranscripts bool
	pageSize           int
	concurrency        int
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise completed orders to the export directory",
	Long: `Enumerates all completed orders on the account and downloads their
metadata and attachments into the export directory.

Each order gets its own directory containing metadata.json and media,
transcripts and other subdirectories. Attachments recorded as downloaded in
a previous run are skipped; a failed attachment is reported and the run
continues.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncFlags.outputDir, "output-dir", "o", "./exports", "export root directory")
	syncCmd.Flags().StringVar(&syncFlags.since, "since", "", "only orders placed on or after this date (YYYY-MM-DD)")
	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "show planned actions without downloading")
	syncCmd.Flags().BoolVar(&syncFlags.includeMedia, "include-media", true, "download media attachments")
	syncCmd.Flags().BoolVar(&syncFlags.includeTranscripts, "include-transcripts", true, "download transcript and caption attachments")
	syncCmd.Flags().IntVar(&syncFlags.pageSize, "page-size", 50, "orders requested per listing page")
	syncCmd.Flags().IntVar(&syncFlags.concurrency, "concurrency", 1, "concurrent attachment downloads within an order")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if newSyncRunner == nil {
		return errors.New("sync service not configured")
	}

	opts, err := buildSyncOptions()
	if err != nil {
		return err
	}

	runner, release, err := newSyncRunner(syncFlags.outputDir)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return errors.New("credentials not configured: run 'revsync configure' or set REV_API_KEY")
		}
		return fmt.Errorf("initialise sync: %w", err)
	}
	defer release() //nolint:errcheck // Resources released best-effort on exit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if syncFlags.dryRun {
		return runPlan(ctx, cmd, runner, opts)
	}

	opts.Events = func(ev driving.SyncEvent) { printEvent(cmd, ev) }

	report, err := runner.Sync(ctx, opts)
	if report != nil {
		printSummary(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// buildSyncOptions validates flag values into sync options.
func buildSyncOptions() (driving.SyncOptions, error) {
	opts := driving.SyncOptions{
		PageSize:           syncFlags.pageSize,
		IncludeMedia:       syncFlags.includeMedia,
		IncludeTranscripts: syncFlags.includeTranscripts,
		Concurrency:        syncFlags.concurrency,
	}

	if opts.PageSize < 1 {
		return driving.SyncOptions{}, fmt.Errorf("%w: --page-size must be at least 1", domain.ErrInvalidInput)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	if syncFlags.since != "" {
		since, err := time.Parse("2006-01-02", syncFlags.since)
		if err != nil {
			return driving.SyncOptions{}, fmt.Errorf("%w: --since must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		opts.Since = &since
	}

	return opts, nil
}

// runPlan walks the same decision path as a sync without writing anything.
func runPlan(ctx context.Context, cmd *cobra.Command, runner driving.SyncRunner, opts driving.SyncOptions) error {
	actions, err := runner.Plan(ctx, opts)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	counts := map[driving.ActionType]int{}
	for _, action := range actions {
		counts[action.Type]++
		switch action.Type {
		case driving.ActionDownload:
			target := string(action.Format)
			if target == "" {
				target = "original"
			}
			cmd.Printf("download  %-12s %-10s %s (%s)\n",
				action.OrderNumber, action.Category, action.Attachment.Name, target)
		case driving.ActionSkip:
			cmd.Printf("skip      %-12s %-10s %s\n",
				action.OrderNumber, action.Category, action.Attachment.Name)
		case driving.ActionExclude:
			cmd.Printf("exclude   %-12s %-10s %s\n",
				action.OrderNumber, action.Category, action.Attachment.Name)
		}
	}

	cmd.Println()
	cmd.Printf("Would download %d attachments (%d already downloaded, %d excluded).\n",
		counts[driving.ActionDownload], counts[driving.ActionSkip], counts[driving.ActionExclude])
	return nil
}

// printEvent renders progress as it happens.
func printEvent(cmd *cobra.Command, ev driving.SyncEvent) {
	switch ev.Kind {
	case driving.EventOrderStarted:
		cmd.Printf("Order %s\n", ev.OrderNumber)
	case driving.EventOrderFailed:
		cmd.Printf("Order %s FAILED: %v\n", ev.OrderNumber, ev.Err)
	case driving.EventAttachmentSaved:
		cmd.Printf("  saved %s\n", ev.Path)
	case driving.EventAttachmentFailed:
		cmd.Printf("  failed %s: %v\n", ev.Attachment.ID, ev.Err)
	}
}

// Summary styling.
var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	summaryErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// printSummary renders the end-of-run report.
func printSummary(cmd *cobra.Command, report *driving.SyncReport) {
	cmd.Println()
	cmd.Println(summaryTitleStyle.Render("Sync complete"))
	cmd.Printf("  Run:        %s\n", report.RunID)
	cmd.Printf("  Orders:     %d\n", report.OrdersScanned)
	cmd.Printf("  %s\n", summaryOKStyle.Render(fmt.Sprintf("Downloaded: %d", report.Downloaded)))
	cmd.Printf("  Skipped:    %d\n", report.Skipped)
	cmd.Printf("  Excluded:   %d\n", report.Excluded)
	if n := len(report.Failures); n > 0 {
		cmd.Printf("  %s\n", summaryErrStyle.Render(fmt.Sprintf("Failures:   %d", n)))
		for _, failure := range report.Failures {
			if failure.AttachmentID != "" {
				cmd.Printf("    order %s attachment %s: %v\n", failure.OrderNumber, failure.AttachmentID, failure.Err)
			} else if failure.OrderNumber != "" {
				cmd.Printf("    order %s: %v\n", failure.OrderNumber, failure.Err)
			} else {
				cmd.Printf("    %v\n", failure.Err)
			}
		}
	}
	cmd.Printf("  Elapsed:    %s\n", report.Elapsed.Round(time.Millisecond))
}
