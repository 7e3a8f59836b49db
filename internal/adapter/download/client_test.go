package download

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(timeout time.Duration) *Client {
	return NewClient(timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// countingServer serves body with status and records how many requests arrived.
func countingServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestClient_Ensure_Downloads(t *testing.T) {
	body := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff, 0x0a, 0x0d}
	srv, hits := countingServer(t, http.StatusOK, body)
	dir := t.TempDir()
	dest := filepath.Join(dir, "emissions.xlsx")

	res, err := testClient(5*time.Second).Ensure(context.Background(), srv.URL, dest)
	require.NoError(t, err)

	assert.True(t, res.Downloaded)
	assert.Equal(t, int64(len(body)), res.Bytes)
	assert.Equal(t, int64(1), hits.Load())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got, "body written byte for byte")
	assert.Empty(t, tempFiles(t, dir))
}

func TestClient_Ensure_SkipsWhenPresent(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, []byte("fresh"))
	dest := filepath.Join(t.TempDir(), "emissions.xlsx")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	client := testClient(5 * time.Second)
	for range 3 {
		res, err := client.Ensure(context.Background(), srv.URL, dest)
		require.NoError(t, err)
		assert.False(t, res.Downloaded)
		assert.Equal(t, int64(5), res.Bytes)
	}

	assert.Equal(t, int64(0), hits.Load(), "no request when file exists")
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(got))
}

func TestClient_Ensure_SecondRunIsOffline(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, []byte("workbook"))
	dest := filepath.Join(t.TempDir(), "emissions.xlsx")
	client := testClient(5 * time.Second)

	_, err := client.Ensure(context.Background(), srv.URL, dest)
	require.NoError(t, err)
	_, err = client.Ensure(context.Background(), srv.URL, dest)
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load())
}

func TestClient_Ensure_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"not modified", http.StatusNotModified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, tt.status, []byte("error page"))
			dir := t.TempDir()
			dest := filepath.Join(dir, "emissions.xlsx")

			_, err := testClient(5*time.Second).Ensure(context.Background(), srv.URL, dest)
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.NoFileExists(t, dest)
			assert.Empty(t, tempFiles(t, dir))
		})
	}
}

func TestClient_Ensure_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	dest := filepath.Join(t.TempDir(), "emissions.xlsx")
	_, err := testClient(50*time.Millisecond).Ensure(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestClient_Ensure_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	dest := filepath.Join(t.TempDir(), "emissions.xlsx")
	_, err := testClient(time.Second).Ensure(context.Background(), url, dest)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestClient_Ensure_MissingDirectory(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, []byte("workbook"))
	dest := filepath.Join(t.TempDir(), "absent", "emissions.xlsx")

	_, err := testClient(time.Second).Ensure(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")
}
