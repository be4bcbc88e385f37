package internal

import (
	"errors"
	"log/slog"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/meow/internal/render"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Preview  PreviewConfig     `yaml:"preview"`
	Markdown MarkdownConfig    `yaml:"markdown"`
	Backends BackendsConfig    `yaml:"backends"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	return c.Markdown.Validate()
}

// RenderOptions converts the markdown and backend sections into options for
// the renderer registry.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Markdown: render.MarkdownOptions{
			HighlightStyle: c.Markdown.HighlightStyle,
			HardWraps:      c.Markdown.HardWraps,
			UnsafeHTML:     c.Markdown.UnsafeHTML,
			HeadingIDs:     c.Markdown.HeadingIDs,
		},
		Textile: c.Backends.Textile,
		RST:     c.Backends.RST,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel        slog.Level    `yaml:"log_level"`
	HTTP            HTTPConfig    `yaml:"http"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the address the browser should open.
func (c *HTTPConfig) URL() string {
	return "http://" + c.Address() + "/"
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PreviewConfig controls the live preview page.
type PreviewConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Watch        bool          `yaml:"watch"`
	OpenBrowser  bool          `yaml:"open_browser"`
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PollInterval, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// MarkdownConfig holds goldmark settings.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style"`
	HardWraps      bool   `yaml:"hard_wraps"`
	UnsafeHTML     bool   `yaml:"unsafe_html"`
	HeadingIDs     bool   `yaml:"heading_ids"`
}

// Validate validates the markdown configuration.
func (c *MarkdownConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightStyle, validation.Required),
	)
}

// BackendsConfig holds the converter command lines for the kinds that are
// rendered by an external program. An empty list selects pandoc.
type BackendsConfig struct {
	Textile []string `yaml:"textile"`
	RST     []string `yaml:"rst"`
}

// Verbosity maps the --quiet and --debug flags onto a log level. debug wins
// when both are given.
func (c *ApplicationConfig) Verbosity(quiet, debug bool) {
	switch {
	case debug:
		c.LogLevel = slog.LevelDebug
	case quiet:
		c.LogLevel = slog.LevelError
	}
}

var errNoDocument = errors.New("a document path is required")

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 7777,
			},
			ShutdownTimeout: 10 * time.Second,
		},
		Preview: PreviewConfig{
			PollInterval: time.Second,
			Watch:        true,
			OpenBrowser:  true,
		},
		Markdown: MarkdownConfig{
			HighlightStyle: "github",
		},
	}
}
