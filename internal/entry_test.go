package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/meow/internal/apperr"
	"github.com/starford/meow/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func testConfig(t *testing.T) *Config {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = freePort(t)
	cfg.App.ShutdownTimeout = 2 * time.Second
	cfg.Preview.OpenBrowser = false
	return cfg
}

func waitReady(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/health/ready")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
}

func TestRunServesAndStopsOnDelete(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	cfg := testConfig(t)
	base := "http://" + cfg.App.HTTP.Address()

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(),
			WithConfig(cfg), WithDocument(path), WithLogger(discardLogger()))
	}()
	waitReady(t, base)

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<h1>Hi</h1>")

	resp, err = http.Post(base+"/update", "application/json", strings.NewReader(`{"timestamp": 0}`))
	require.NoError(t, err)
	var update struct {
		Timestamp int64   `json:"timestamp"`
		HTMLPart  *string `json:"html_part"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, update.HTMLPart)
	assert.Contains(t, *update.HTMLPart, "<h1>Hi</h1>")
	assert.Positive(t, update.Timestamp)

	req, _ := http.NewRequest(http.MethodDelete, base+"/", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after DELETE /")
	}

	_, err = http.Get(base + "/health/live")
	assert.Error(t, err, "listener should be closed")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithDocument(path), WithLogger(discardLogger()))
	}()
	waitReady(t, "http://"+cfg.App.HTTP.Address())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunResolutionErrorsBeforeListening(t *testing.T) {
	cfg := testConfig(t)

	err := Run(context.Background(),
		WithConfig(cfg), WithDocument(filepath.Join(t.TempDir(), "missing.md")), WithLogger(discardLogger()))
	assert.ErrorIs(t, err, apperr.ErrInvalidFile)

	path := testutil.WriteDoc(t, "notes.docx", "x")
	err = Run(context.Background(), WithConfig(cfg), WithDocument(path), WithLogger(discardLogger()))
	var unsupported *apperr.UnsupportedMarkupError
	require.True(t, errors.As(err, &unsupported))
	assert.NotEmpty(t, unsupported.Known)

	// Nothing may have bound the port.
	ln, err := net.Listen("tcp", cfg.App.HTTP.Address())
	require.NoError(t, err)
	ln.Close()
}

func TestRunPortInUse(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	cfg := testConfig(t)
	ln, err := net.Listen("tcp", cfg.App.HTTP.Address())
	require.NoError(t, err)
	defer ln.Close()

	err = Run(context.Background(), WithConfig(cfg), WithDocument(path), WithLogger(discardLogger()))
	assert.ErrorContains(t, err, "listen")
}

func TestRunRequiresDocument(t *testing.T) {
	err := Run(context.Background(), WithConfig(testConfig(t)), WithLogger(discardLogger()))
	assert.ErrorIs(t, err, errNoDocument)
}

func TestExport(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	out := filepath.Join(t.TempDir(), "out.html")

	err := Export(context.Background(),
		WithDocument(path), WithOutput(out), WithLogger(discardLogger()))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>Hi</h1>")
	assert.NotContains(t, string(data), "<script")
}

func TestExportRequiresOutput(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	err := Export(context.Background(), WithDocument(path), WithLogger(discardLogger()))
	assert.ErrorContains(t, err, "output path is required")
}

func TestExportWriteError(t *testing.T) {
	path := testutil.WriteDoc(t, "notes.md", "# Hi")
	out := filepath.Join(t.TempDir(), "no", "such", "dir", "out.html")

	err := Export(context.Background(),
		WithDocument(path), WithOutput(out), WithLogger(discardLogger()))
	assert.ErrorIs(t, err, apperr.ErrExportWrite)
}
