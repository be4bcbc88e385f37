// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/meow/internal/api"
	"github.com/starford/meow/internal/browser"
	"github.com/starford/meow/internal/export"
	"github.com/starford/meow/internal/markup"
	"github.com/starford/meow/internal/mcpserver"
	"github.com/starford/meow/internal/preview"
	"github.com/starford/meow/internal/render"
	"github.com/starford/meow/internal/server"
	"github.com/starford/meow/internal/sse"
	"github.com/starford/meow/internal/watch"
	"github.com/starford/meow/internal/web"
)

// Run previews the document over HTTP until it is told to stop by
// DELETE /, a SIGINT/SIGTERM or ctx.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.setupLogger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("document", app.path),
		slog.Bool("watch", cfg.Preview.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	reg := render.NewRegistry(cfg.RenderOptions(), logger)

	// Resolution errors are fatal and must surface before anything listens.
	doc, err := markup.Resolve(reg, app.path, app.filetype)
	if err != nil {
		return err
	}
	logger.Info("Document resolved", slog.String("path", doc.Path()), slog.String("kind", string(doc.Kind())))

	ln, err := server.Listen(cfg.App.HTTP.Address())
	if err != nil {
		return err
	}
	ctrl := server.New(ln, cfg.App.ShutdownTimeout, logger)

	var broker *sse.Broker
	var events http.Handler
	if cfg.Preview.Watch {
		broker = sse.NewBroker(0)
		ctrl.OnShutdown(broker.Close)
		events = broker
	}

	svc := preview.NewService(doc, logger)
	h := api.NewHandler(svc, ctrl, web.LiveOptions{
		PollInterval: cfg.Preview.PollInterval,
		Events:       broker != nil,
	}, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.NewRouter(h, events))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	if broker != nil {
		g.Go(func() error {
			err := watch.Watch(gCtx, doc.Path(), watch.DefaultDebounce, logger, func(ts int64, removed bool) {
				broker.PublishChange(doc.Path(), ts, removed)
			})
			if err != nil {
				// Polling still works without push notifications.
				logger.Warn("file watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			ctrl.Shutdown()
		case <-gCtx.Done():
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return ctrl.Start(gCtx, r)
	})

	url := "http://" + ctrl.Addr().String() + "/"
	logger.Info("Serving preview", slog.String("url", url))
	if cfg.Preview.OpenBrowser {
		if err := browser.Open(url); err != nil {
			logger.Debug("browser launch failed", slog.String("error", err.Error()))
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Export renders the document once into the output file. No listener is
// opened.
func Export(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if app.output == "" {
		return fmt.Errorf("export: output path is required")
	}
	logger := app.setupLogger(os.Stdout)

	reg := render.NewRegistry(app.config.RenderOptions(), logger)
	return export.Once(reg, app.path, app.filetype, app.output, logger)
}

// ServeMCP exposes the document to an MCP client over stdin/stdout. Logs go
// to stderr since stdout carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.setupLogger(os.Stderr)

	reg := render.NewRegistry(app.config.RenderOptions(), logger)
	doc, err := markup.Resolve(reg, app.path, app.filetype)
	if err != nil {
		return err
	}

	logger.Info("Serving MCP over stdio", slog.String("document", doc.Path()))
	srv := mcpserver.New(preview.NewService(doc, logger), reg, app.version)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// setupLogger installs the structured JSON logger as the default, unless
// one was supplied with WithLogger.
func (a *application) setupLogger(w io.Writer) *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	a.logger = logger
	return logger
}
