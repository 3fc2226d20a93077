package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

// downloadTimeout bounds a whole artifact transfer. Artifacts can be tens of
// megabytes, far beyond what httpTimeout allows for metadata.
const downloadTimeout = 5 * time.Minute

var (
	// ErrNotFound is returned when a resource doesn't exist in the repository.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for metadata requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewDownloadClient creates an HTTP client for streaming artifact downloads.
func NewDownloadClient() *http.Client {
	return &http.Client{Timeout: downloadTimeout}
}
