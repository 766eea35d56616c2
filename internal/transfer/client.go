package transfer

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 30 * time.Second

// NewClient returns an HTTP client with pooled connections. A timeout of
// zero selects DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
