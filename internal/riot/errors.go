package riot

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the client. Callers branch on these with
// errors.Is to decide between skipping a match and aborting the run.
var (
	// ErrInvalidCredentials means the API key was rejected (401/403).
	// Fatal: retrying cannot help until the key is replaced.
	ErrInvalidCredentials = errors.New("riot: invalid or expired API key")

	// ErrNotFound means the account, match, or timeline does not exist (404).
	ErrNotFound = errors.New("riot: resource not found")

	// ErrRateLimited means retries were exhausted while the API kept
	// answering 429.
	ErrRateLimited = errors.New("riot: rate limited")

	// ErrUpstreamUnavailable means the API kept answering 5xx.
	ErrUpstreamUnavailable = errors.New("riot: upstream unavailable")

	// ErrRateLimitTimeout means the local limiter could not admit the
	// request within the configured wait ceiling.
	ErrRateLimitTimeout = errors.New("riot: timed out waiting for rate limit")

	// ErrInvalidRegion means the platform code is not a known routing value.
	ErrInvalidRegion = errors.New("riot: unknown platform")
)

// APIError carries the HTTP status of a failed request alongside the
// sentinel it maps to, so logs can show the raw status while callers
// still match on errors.Is.
type APIError struct {
	StatusCode int
	URL        string
	Sentinel   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot API returned %d for %s", e.StatusCode, e.URL)
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// wrapStatus maps an HTTP status code to the matching sentinel.
func wrapStatus(status int, url string) error {
	var sentinel error
	switch {
	case status == 401 || status == 403:
		sentinel = ErrInvalidCredentials
	case status == 404:
		sentinel = ErrNotFound
	case status == 429:
		sentinel = ErrRateLimited
	case status >= 500:
		sentinel = ErrUpstreamUnavailable
	default:
		sentinel = fmt.Errorf("unexpected status %d", status)
	}
	return &APIError{StatusCode: status, URL: url, Sentinel: sentinel}
}
