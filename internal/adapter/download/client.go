package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client fetches remote files to local paths.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a download client whose requests time out after timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Ensure makes sure dest exists. If it is already present no request is made,
// regardless of age or content. Otherwise the body of a GET to url is
// streamed into a temporary file beside dest and renamed into place, so an
// interrupted transfer never leaves a truncated file at dest.
func (c *Client) Ensure(ctx context.Context, url, dest string) (domain.Download, error) {
	info, err := os.Stat(dest)
	if err == nil {
		c.logger.Debug("file present, skipping download", "path", dest, "bytes", info.Size())
		return domain.Download{Path: dest, Bytes: info.Size()}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return domain.Download{}, fmt.Errorf("stat %s: %w", dest, err)
	}

	n, err := c.fetch(ctx, url, dest)
	if err != nil {
		return domain.Download{}, err
	}
	c.logger.Info("downloaded", "url", url, "path", dest, "bytes", n)
	return domain.Download{Path: dest, Downloaded: true, Bytes: n}, nil
}

func (c *Client) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("download %s: %w", url, err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	return n, nil
}
