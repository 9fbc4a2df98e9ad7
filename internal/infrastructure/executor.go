package infrastructure

import (
	"net/http"
	"time"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// HTTPExecutor is the default request executor, a thin wrapper over
// net/http.
type HTTPExecutor struct {
	client *http.Client
}

// NewHTTPExecutor creates an HTTPExecutor with the default timeout.
func NewHTTPExecutor() domain.RequestExecutor {
	return NewHTTPExecutorWithTimeout(30 * time.Second)
}

// NewHTTPExecutorWithTimeout creates an HTTPExecutor with the given timeout.
func NewHTTPExecutorWithTimeout(timeout time.Duration) domain.RequestExecutor {
	return &HTTPExecutor{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do sends the request and returns the response unmodified.
func (e *HTTPExecutor) Do(req *http.Request) (*http.Response, error) {
	return e.client.Do(req)
}
