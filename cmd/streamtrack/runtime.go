package main

import (
	"context"
	"fmt"

	"github.com/juju/clock"

	"github.com/custodia-labs/streamtrack/internal/adapters/driven/config/file"
	"github.com/custodia-labs/streamtrack/internal/adapters/driven/metrics"
	"github.com/custodia-labs/streamtrack/internal/adapters/driven/protocol/jsonl"
	"github.com/custodia-labs/streamtrack/internal/adapters/driven/statusapi"
	"github.com/custodia-labs/streamtrack/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/streamtrack/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/streamtrack/internal/adapters/driving/cli"
	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/core/services"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// loadSettings builds the settings service over the TOML config file in dir.
func loadSettings(dir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// openRuntime connects the engine to the configured backend.
func openRuntime(settings domain.AppSettings) (*cli.Runtime, error) {
	logger.Debug("opening %s backend", settings.Backend)

	switch settings.Backend {
	case domain.BackendHTTP:
		client, err := statusapi.NewClient(context.Background(), statusapi.Config{
			BaseURL:   settings.API.BaseURL,
			Token:     settings.API.Token,
			RateLimit: settings.API.RateLimit,
			Timeout:   settings.API.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return newRuntime(settings.Backend, client, nil, nil), nil

	case domain.BackendSQLite:
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("status ledger at %s", store.Path())
		ledger := store.Ledger()
		return newRuntime(settings.Backend, ledger, ledger, store.Close), nil

	case domain.BackendMemory:
		api := memory.NewStreamStatusAPI()
		return newRuntime(settings.Backend, api, api, nil), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, settings.Backend)
	}
}

func newRuntime(
	backend domain.Backend,
	api driven.StreamStatusAPI,
	lister driven.StreamStatusLister,
	closeFn func() error,
) *cli.Runtime {
	collector := metrics.NewCollector()
	reconciler := services.NewStatusReconciler(collector.InstrumentAPI(api), clock.WallClock)
	trackers := services.NewTrackerFactory(
		func() driven.StreamStatusStore { return memory.NewStreamStatusStore() },
		collector.InstrumentPublisher(services.NewStatusUpdateListener(reconciler)),
	)

	return &cli.Runtime{
		Replay:  services.NewReplayService(trackers, jsonl.NewReaderFactory()),
		Lister:  lister,
		Backend: backend,
		Metrics: collector,
		Close:   closeFn,
	}
}
