package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driving"
)

// mockSyncRunner implements driving.SyncRunner for testing.
type mockSyncRunner struct {
	report   *driving.SyncReport
	syncErr  error
	planned  []driving.PlannedAction
	planErr  error
	gotOpts  driving.SyncOptions
	syncRuns int
	planRuns int
}

func (m *mockSyncRunner) Sync(_ context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	m.gotOpts = opts
	m.syncRuns++
	return m.report, m.syncErr
}

func (m *mockSyncRunner) Plan(_ context.Context, opts driving.SyncOptions) ([]driving.PlannedAction, error) {
	m.gotOpts = opts
	m.planRuns++
	return m.planned, m.planErr
}

// setupSyncTest stubs the runner factory with a mock and returns it with a
// cleanup function.
func setupSyncTest(runner *mockSyncRunner) func() {
	oldFactory := newSyncRunner
	newSyncRunner = func(_ string) (driving.SyncRunner, func() error, error) {
		return runner, func() error { return nil }, nil
	}
	return func() {
		newSyncRunner = oldFactory
	}
}

// resetSyncFlags restores flag defaults; flag values persist across
// Execute calls and would otherwise leak between tests.
func resetSyncFlags() {
	syncFlags.outputDir = "./exports"
	syncFlags.since = ""
	syncFlags.dryRun = false
	syncFlags.includeMedia = true
	syncFlags.includeTranscripts = true
	syncFlags.pageSize = 50
	syncFlags.concurrency = 1
}

func executeCommand(args ...string) (string, error) {
	resetSyncFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_ServiceNotConfigured(t *testing.T) {
	oldFactory := newSyncRunner
	newSyncRunner = nil
	defer func() {
		newSyncRunner = oldFactory
	}()

	_, err := executeCommand("sync")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}

func TestSyncCmd_PrintsSummary(t *testing.T) {
	runner := &mockSyncRunner{report: &driving.SyncReport{
		RunID:         "run-1",
		OrdersScanned: 3,
		Downloaded:    5,
		Skipped:       2,
		Elapsed:       1500 * time.Millisecond,
	}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	output, err := executeCommand("sync")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.syncRuns)
	assert.Contains(t, output, "Sync complete")
	assert.Contains(t, output, "Downloaded: 5")
	assert.Contains(t, output, "Skipped:    2")
}

func TestSyncCmd_ReportsFailures(t *testing.T) {
	runner := &mockSyncRunner{report: &driving.SyncReport{
		Failures: []driving.Failure{
			{OrderNumber: "CP1", AttachmentID: "AT1", Err: assert.AnError},
		},
		Downloaded: 1,
	}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	output, err := executeCommand("sync")

	require.NoError(t, err, "partial failure is not a command failure")
	assert.Contains(t, output, "Failures:   1")
	assert.Contains(t, output, "order CP1 attachment AT1")
}

func TestSyncCmd_SyncError(t *testing.T) {
	runner := &mockSyncRunner{
		report:  &driving.SyncReport{},
		syncErr: domain.ErrAllAttachmentsFailed,
	}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	output, err := executeCommand("sync")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed")
	// The summary still prints before the error surfaces.
	assert.Contains(t, output, "Sync complete")
}

func TestSyncCmd_FlagsMapToOptions(t *testing.T) {
	runner := &mockSyncRunner{report: &driving.SyncReport{}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	_, err := executeCommand("sync",
		"--include-media=false",
		"--include-transcripts=true",
		"--page-size", "25",
		"--concurrency", "4",
		"--since", "2024-06-01",
	)

	require.NoError(t, err)
	assert.False(t, runner.gotOpts.IncludeMedia)
	assert.True(t, runner.gotOpts.IncludeTranscripts)
	assert.Equal(t, 25, runner.gotOpts.PageSize)
	assert.Equal(t, 4, runner.gotOpts.Concurrency)
	require.NotNil(t, runner.gotOpts.Since)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *runner.gotOpts.Since)
}

func TestSyncCmd_InvalidSince(t *testing.T) {
	runner := &mockSyncRunner{report: &driving.SyncReport{}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	_, err := executeCommand("sync", "--since", "June 1st")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, runner.syncRuns)
}

func TestSyncCmd_InvalidPageSize(t *testing.T) {
	runner := &mockSyncRunner{report: &driving.SyncReport{}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	_, err := executeCommand("sync", "--page-size", "0")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSyncCmd_OutputDirReachesFactory(t *testing.T) {
	var gotDir string
	oldFactory := newSyncRunner
	newSyncRunner = func(outputDir string) (driving.SyncRunner, func() error, error) {
		gotDir = outputDir
		return &mockSyncRunner{report: &driving.SyncReport{}}, func() error { return nil }, nil
	}
	defer func() {
		newSyncRunner = oldFactory
	}()

	_, err := executeCommand("sync", "--output-dir", "/tmp/rev-exports")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/rev-exports", gotDir)
}

func TestSyncCmd_NotConfiguredFactory(t *testing.T) {
	oldFactory := newSyncRunner
	newSyncRunner = func(_ string) (driving.SyncRunner, func() error, error) {
		return nil, nil, domain.ErrNotConfigured
	}
	defer func() {
		newSyncRunner = oldFactory
	}()

	_, err := executeCommand("sync")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "revsync configure")
}

func TestSyncCmd_DryRun(t *testing.T) {
	runner := &mockSyncRunner{planned: []driving.PlannedAction{
		{
			Type:        driving.ActionDownload,
			OrderNumber: "CP1",
			Attachment:  domain.Attachment{ID: "AT1", Name: "call.docx"},
			Category:    domain.CategoryTranscript,
			Format:      domain.FormatJSON,
		},
		{
			Type:        driving.ActionSkip,
			OrderNumber: "CP1",
			Attachment:  domain.Attachment{ID: "AT2", Name: "call.mp3"},
			Category:    domain.CategoryMedia,
		},
	}}
	cleanup := setupSyncTest(runner)
	defer cleanup()

	output, err := executeCommand("sync", "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.planRuns)
	assert.Zero(t, runner.syncRuns, "dry run must not sync")
	assert.Contains(t, output, "Would download 1 attachments (1 already downloaded, 0 excluded).")
	assert.Contains(t, output, "call.docx")
}
