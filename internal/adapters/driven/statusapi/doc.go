// Package statusapi is an HTTP client for the remote stream status service.
//
// The service exposes separate create and update endpoints:
//
//	POST {base}/v1/stream_statuses/create
//	POST {base}/v1/stream_statuses/update
//
// Requests are authenticated with a bearer token and throttled client side.
// Failed calls are returned as *APIError or *RateLimitError and are never
// retried here.
package statusapi
