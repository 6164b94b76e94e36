package statusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.StreamStatusAPI = (*Client)(nil)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	createPath = "/v1/stream_statuses/create"
	updatePath = "/v1/stream_statuses/update"

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// Config configures a Client.
type Config struct {
	// BaseURL is the service root, e.g. https://status.example.com/api.
	BaseURL string

	// Token is sent as a bearer token. Empty disables authentication.
	Token string

	// RateLimit caps requests per second. Zero or less disables throttling.
	RateLimit float64

	// Timeout bounds a single request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport. Tests use it to inject httptest clients.
	HTTPClient *http.Client
}

// Client calls the stream status service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: status api base url is required", domain.ErrInvalidInput)
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient.Timeout = timeout

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// CreateStreamStatus creates a status entity.
func (c *Client) CreateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusCreateRequest,
) (*domain.StreamStatus, error) {
	var status domain.StreamStatus
	if err := c.post(ctx, createPath, req, &status); err != nil {
		return nil, fmt.Errorf("create stream status: %w", err)
	}
	return &status, nil
}

// UpdateStreamStatus updates the entity identified by req.ID.
func (c *Client) UpdateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusUpdateRequest,
) (*domain.StreamStatus, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("update stream status: %w: id is required", domain.ErrInvalidInput)
	}

	var status domain.StreamStatus
	if err := c.post(ctx, updatePath, req, &status); err != nil {
		return nil, fmt.Errorf("update stream status: %w", err)
	}
	return &status, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Debug("POST %s", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, url); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkResponse(resp *http.Response, url string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		rlErr := &RateLimitError{URL: url}
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				rlErr.RetryAt = time.Now().Add(time.Duration(seconds) * time.Second)
			}
		}
		return rlErr
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(raw, resp.Status),
		URL:        url,
	}
}

// errorMessage prefers the service's JSON "message" field over the raw body.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fallback
}
