package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBackend        = "backend"
	keyAPIBaseURL     = "api.base_url"
	keyAPIToken       = "api.token"
	keyAPIRateLimit   = "api.rate_limit"
	keyAPITimeoutSecs = "api.timeout_seconds"
	keyDataDir        = "storage.data_dir"
	keyLogVerbose     = "log.verbose"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backend: s.getBackend(defaults.Backend),
		API: domain.APISettings{
			BaseURL:   s.configStore.GetString(keyAPIBaseURL),
			Token:     s.configStore.GetString(keyAPIToken),
			RateLimit: s.getFloat(keyAPIRateLimit, defaults.API.RateLimit),
			Timeout:   s.getSeconds(keyAPITimeoutSecs, defaults.API.Timeout),
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyDataDir, defaults.Storage.DataDir),
		},
		Verbose: s.getBool(keyLogVerbose, defaults.Verbose),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyBackend, settings.Backend.String()); err != nil {
		return fmt.Errorf("save backend: %w", err)
	}

	if err := s.configStore.Set(keyAPIBaseURL, settings.API.BaseURL); err != nil {
		return fmt.Errorf("save api base_url: %w", err)
	}
	if settings.API.Token != "" {
		if err := s.configStore.Set(keyAPIToken, settings.API.Token); err != nil {
			return fmt.Errorf("save api token: %w", err)
		}
	}
	if err := s.configStore.Set(keyAPIRateLimit, settings.API.RateLimit); err != nil {
		return fmt.Errorf("save api rate_limit: %w", err)
	}
	if err := s.configStore.Set(keyAPITimeoutSecs, int64(settings.API.Timeout/time.Second)); err != nil {
		return fmt.Errorf("save api timeout_seconds: %w", err)
	}

	if settings.Storage.DataDir != "" {
		if err := s.configStore.Set(keyDataDir, settings.Storage.DataDir); err != nil {
			return fmt.Errorf("save storage data_dir: %w", err)
		}
	}

	if err := s.configStore.Set(keyLogVerbose, settings.Verbose); err != nil {
		return fmt.Errorf("save log verbose: %w", err)
	}

	return nil
}

// SetBackend selects the status API backend.
func (s *SettingsService) SetBackend(backend domain.Backend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Backend = backend
	return s.Save(settings)
}

// SetAPI configures the remote stream status API.
func (s *SettingsService) SetAPI(baseURL, token string) error {
	if baseURL == "" {
		return fmt.Errorf("%w: base url is required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.API.BaseURL = baseURL
	settings.API.Token = token
	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getBackend keeps the raw value when it is unknown so Validate can report it.
func (s *SettingsService) getBackend(defaultVal domain.Backend) domain.Backend {
	val := s.configStore.GetString(keyBackend)
	if val == "" {
		return defaultVal
	}
	return domain.Backend(val)
}
