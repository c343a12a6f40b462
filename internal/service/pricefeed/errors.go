package pricefeed

import (
	"errors"
	"fmt"
)

// Failure conditions surfaced to the scoring job. Callers dispatch with
// errors.Is.
var (
	// ErrUnavailable means the upstream kept failing after bounded retries
	// (network failure or 5xx).
	ErrUnavailable = errors.New("pricefeed: upstream unavailable")
	// ErrRateLimited means the upstream returned 429 on every attempt.
	ErrRateLimited = errors.New("pricefeed: rate limited")
	// ErrNoData means the historical window contained no data points and the
	// current-value fallback failed too.
	ErrNoData = errors.New("pricefeed: no data points in range")
	// ErrMalformed means the response body could not be decoded.
	ErrMalformed = errors.New("pricefeed: malformed response")
)

// ClientError is a non-retryable 4xx from the upstream, typically a
// malformed or too-narrow range query. The fetcher falls back to the
// current-value endpoint on it.
type ClientError struct {
	Status int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("pricefeed: client error: status %d", e.Status)
}
