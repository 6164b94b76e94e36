// Package cli provides the streamtrack command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

var version = "dev"

var (
	settingsService driving.SettingsService
	settingsLoader  SettingsLoader
	runtimeOpener   RuntimeOpener
)

var (
	verbose   bool
	configDir string
)

// SettingsLoader builds the settings service for a config directory.
// An empty dir selects the default location.
type SettingsLoader func(dir string) (driving.SettingsService, error)

// Runtime is the engine wired to the configured backend.
type Runtime struct {
	// Replay tracks recorded connector output.
	Replay driving.ReplayService

	// Lister is nil when the backend cannot list statuses.
	Lister driven.StreamStatusLister

	// Backend is the backend the runtime reconciles to.
	Backend domain.Backend

	// Metrics receives engine metrics. May be nil.
	Metrics MetricsWriter

	// Close releases backend resources. May be nil.
	Close func() error
}

// MetricsWriter writes collected metrics to a file.
type MetricsWriter interface {
	WriteTextfile(path string) error
}

// RuntimeOpener builds a Runtime from settings.
type RuntimeOpener func(settings domain.AppSettings) (*Runtime, error)

var rootCmd = &cobra.Command{
	Use:   "streamtrack",
	Short: "Track per-stream run-states of data syncs",
	Long: `streamtrack observes the protocol messages exchanged during a data sync
and reports a run-state for every stream (RUNNING, RATE_LIMITED, COMPLETE,
INCOMPLETE) to a stream status backend.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.streamtrack)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsLoader sets how the settings service is built.
func SetSettingsLoader(loader SettingsLoader) {
	settingsLoader = loader
}

// SetRuntimeOpener sets how the engine is wired to a backend.
func SetRuntimeOpener(opener RuntimeOpener) {
	runtimeOpener = opener
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil || settingsLoader == nil {
		return nil
	}

	svc, err := settingsLoader(configDir)
	if err != nil {
		return err
	}
	settingsService = svc

	if !verbose {
		if settings, err := svc.Get(); err == nil && settings.Verbose {
			logger.SetVerbose(true)
		}
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}
