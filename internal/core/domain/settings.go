package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Backend selects where stream status entities are reconciled to.
type Backend string

// Available backends.
const (
	// BackendHTTP sends create/update calls to a remote stream status API.
	BackendHTTP Backend = "http"

	// BackendSQLite records statuses in a local SQLite ledger.
	BackendSQLite Backend = "sqlite"

	// BackendMemory keeps statuses in process memory, useful for dry runs.
	BackendMemory Backend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b Backend) IsValid() bool {
	switch b {
	case BackendHTTP, BackendSQLite, BackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b Backend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b Backend) Description() string {
	switch b {
	case BackendHTTP:
		return "HTTP (remote stream status API)"
	case BackendSQLite:
		return "SQLite (local status ledger)"
	case BackendMemory:
		return "Memory (dry run, nothing persisted)"
	default:
		return unknownDescription
	}
}

// AllBackends returns every supported backend.
func AllBackends() []Backend {
	return []Backend{BackendHTTP, BackendSQLite, BackendMemory}
}

// APISettings configures the remote stream status API.
type APISettings struct {
	// BaseURL is the API root, e.g. http://localhost:8001/api.
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// RateLimit is the maximum number of calls per second.
	RateLimit float64

	// Timeout bounds each HTTP call.
	Timeout time.Duration
}

// IsConfigured returns true if the API can be reached.
func (a APISettings) IsConfigured() bool {
	return a.BaseURL != ""
}

// StorageSettings configures the SQLite ledger.
type StorageSettings struct {
	// DataDir holds the ledger database. Empty means ~/.streamtrack/data.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend Backend
	API     APISettings
	Storage StorageSettings

	// Verbose enables debug logging.
	Verbose bool
}

// Validate checks that the settings are usable for the selected backend.
func (s AppSettings) Validate() error {
	if !s.Backend.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedBackend, s.Backend)
	}
	if s.Backend == BackendHTTP && !s.API.IsConfigured() {
		return fmt.Errorf("%w: api.base_url is required for the http backend", ErrInvalidInput)
	}
	if s.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSQLite,
		API: APISettings{
			RateLimit: 20,
			Timeout:   30 * time.Second,
		},
	}
}
