package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	path     string
	filetype string
	output   string
	version  string
	logger   *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDocument sets the file to preview.
func WithDocument(path string) Option {
	return func(a *application) {
		a.path = path
	}
}

// WithFiletype forces the markup kind instead of detecting it from the
// file extension.
func WithFiletype(filetype string) Option {
	return func(a *application) {
		a.filetype = filetype
	}
}

// WithOutput sets the destination of Export.
func WithOutput(path string) Option {
	return func(a *application) {
		a.output = path
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogger replaces the JSON stdout logger. Used by tests.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		app.config = NewDefaultConfig()
	}
	if app.path == "" {
		return nil, errNoDocument
	}
	return app, nil
}
