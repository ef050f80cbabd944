// Command revsync mirrors a Rev.com account to a local export directory.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/revsync-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/revsync-cli/internal/adapters/driven/storage/export"
	"github.com/custodia-labs/revsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/revsync-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/revsync-cli/internal/connectors/rev"
	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/revsync-cli/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	creds := file.LoadCredentials(store)

	// Missing credentials are not fatal here: configure, version and help
	// must still work. Commands needing the API report it themselves.
	client, err := rev.NewClient(rev.Config{}, creds)
	if err != nil && !errors.Is(err, domain.ErrNotConfigured) {
		return fmt.Errorf("initialise client: %w", err)
	}

	factory := func(outputDir string) (driving.SyncRunner, func() error, error) {
		if client == nil {
			return nil, nil, domain.ErrNotConfigured
		}
		exportStore, err := export.NewStore(outputDir)
		if err != nil {
			return nil, nil, err
		}
		index, err := sqlite.OpenIndex(outputDir)
		if err != nil {
			return nil, nil, err
		}
		runner := services.NewSyncer(client, client, exportStore, index)
		return runner, index.Close, nil
	}

	var tester driving.ConnectionTester
	if client != nil {
		tester = client
	}

	cli.Wire(factory, tester, store)
	return cli.Execute()
}
