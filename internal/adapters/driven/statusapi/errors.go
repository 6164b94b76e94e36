package statusapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

// RateLimitError is returned when the service answers 429.
type RateLimitError struct {
	RetryAt time.Time
	URL     string
}

func (e *RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("statusapi: rate limited (URL: %s)", e.URL)
	}
	return fmt.Sprintf("statusapi: rate limited until %s (URL: %s)", e.RetryAt.Format(time.RFC3339), e.URL)
}

// Unwrap lets errors.Is match domain.ErrStatusAPI.
func (e *RateLimitError) Unwrap() error { return domain.ErrStatusAPI }

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("statusapi: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap lets errors.Is match domain.ErrStatusAPI.
func (e *APIError) Unwrap() error { return domain.ErrStatusAPI }

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsNotFound checks if the error indicates the status entity does not exist.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error indicates the token lacks access.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsInvalidRequest checks if the service rejected the request body.
func IsInvalidRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest) || hasStatus(err, http.StatusUnprocessableEntity)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}
