package fetch

import (
	"fmt"
	"net/http"
)

// NetworkError wraps transport-level failures: timeouts, DNS errors, refused
// connections. These are transient and retryable on a later run.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Whether the coordinator retries depends on
// the status class.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
}

// Retryable reports whether the status signals a transient condition
// (429 or any 5xx). Other 4xx statuses are terminal.
func (e *HTTPError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
