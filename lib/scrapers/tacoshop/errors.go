package tacoshop

import "fmt"

// CsrfError means the token was missing, rejected or unextractable.
// It is the only error the client retries, exactly once, after
// re-running the refresh handshake.
type CsrfError struct {
	Reason string
}

func (e *CsrfError) Error() string {
	return fmt.Sprintf("csrf failure: %s", e.Reason)
}

// RateLimitError means the upstream signaled throttling. The client
// never retries it, backoff policy belongs to the caller.
type RateLimitError struct {
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limit (status %d)", e.StatusCode)
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %s", e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ApiError is any other non-2xx response, carrying the status code
// and whatever message the response body yielded.
type ApiError struct {
	StatusCode int
	Message    string
	Details    map[string]any
}

func (e *ApiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}
