package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/miorlan/openapi-invoker/internal/domain"
)

// DocumentLoader loads documents from the local filesystem or over HTTP.
type DocumentLoader struct {
	client *http.Client
}

// NewDocumentLoader creates a DocumentLoader with the default timeout.
func NewDocumentLoader() domain.DocumentLoader {
	return NewDocumentLoaderWithTimeout(30 * time.Second)
}

// NewDocumentLoaderWithTimeout creates a DocumentLoader with the given HTTP
// timeout.
func NewDocumentLoaderWithTimeout(timeout time.Duration) domain.DocumentLoader {
	return &DocumentLoader{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Load reads a document from disk or over HTTP.
func (dl *DocumentLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return dl.loadHTTP(ctx, path)
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		cleanPath = absPath
	}
	return os.ReadFile(cleanPath)
}

func (dl *DocumentLoader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := dl.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTTP resource: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTTP response: %w", err)
	}

	return data, nil
}
