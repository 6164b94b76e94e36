package driving

import "github.com/custodia-labs/streamtrack/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBackend selects the status API backend.
	SetBackend(backend domain.Backend) error

	// SetAPI configures the remote stream status API.
	SetAPI(baseURL, token string) error

	// Validate checks if current settings are usable.
	Validate() error
}
