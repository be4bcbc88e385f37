package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/starford/meow/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:7777", cfg.App.HTTP.Address())
	assert.Equal(t, "http://127.0.0.1:7777/", cfg.App.HTTP.URL())
	assert.Equal(t, time.Second, cfg.Preview.PollInterval)
	assert.True(t, cfg.Preview.Watch)
}

func TestHTTPConfig_IPv6Address(t *testing.T) {
	c := HTTPConfig{Host: "::1", Port: 8000}
	assert.Equal(t, "[::1]:8000", c.Address())
}

func TestHTTPConfig_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := NewDefaultConfig()
		cfg.App.HTTP.Port = port
		assert.Error(t, cfg.Validate(), "port %d", port)
	}
}

func TestHTTPConfig_HostRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestPreviewConfig_PollInterval(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Preview.PollInterval = time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg.Preview.PollInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestMarkdownConfig_StyleRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Markdown.HighlightStyle = ""
	assert.Error(t, cfg.Validate())
}

func TestVerbosity(t *testing.T) {
	c := ApplicationConfig{LogLevel: slog.LevelInfo}
	c.Verbosity(false, false)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)

	c.Verbosity(true, false)
	assert.Equal(t, slog.LevelError, c.LogLevel)

	c.Verbosity(true, true)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestRenderOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Markdown.HeadingIDs = true
	cfg.Backends.RST = []string{"rst2html"}

	opts := cfg.RenderOptions()
	assert.Equal(t, "github", opts.Markdown.HighlightStyle)
	assert.True(t, opts.Markdown.HeadingIDs)
	assert.Equal(t, []string{"rst2html"}, opts.RST)
	assert.Nil(t, opts.Textile)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("MEOW_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "meow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: debug
  http:
    port: ${MEOW_TEST_PORT}
preview:
  poll_interval: 250ms
  watch: false
markdown:
  highlight_style: monokai
backends:
  textile: [redcloth]
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.App.HTTP.Host, "defaults survive a partial file")
	assert.Equal(t, 250*time.Millisecond, cfg.Preview.PollInterval)
	assert.False(t, cfg.Preview.Watch)
	assert.True(t, cfg.Preview.OpenBrowser)
	assert.Equal(t, "monokai", cfg.Markdown.HighlightStyle)
	assert.Equal(t, []string{"redcloth"}, cfg.Backends.Textile)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  http:\n    port: 70000\n"), 0o644))

	err := pkgconfig.Load(path, NewDefaultConfig())
	assert.ErrorContains(t, err, "config validation failed")
}
