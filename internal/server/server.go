// Package server owns the HTTP listener of the preview: it serves until
// asked to stop and then shuts down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds how long in-flight requests may take to
// finish once shutdown starts.
const DefaultShutdownTimeout = 10 * time.Second

// Controller runs an http.Server on a listener it owns.
type Controller struct {
	ln              net.Listener
	logger          *slog.Logger
	shutdownTimeout time.Duration

	mu         sync.Mutex
	onShutdown []func()

	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// Listen opens a TCP listener on addr.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// New creates a Controller serving on ln. A non-positive shutdownTimeout
// selects DefaultShutdownTimeout.
func New(ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) *Controller {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Controller{
		ln:              ln,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		stop:            make(chan struct{}),
	}
}

// Addr returns the listener address.
func (c *Controller) Addr() net.Addr { return c.ln.Addr() }

// OnShutdown registers fn to run when shutdown begins. Long-lived handlers
// such as event streams use it to return so the drain can complete.
func (c *Controller) OnShutdown(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onShutdown = append(c.onShutdown, fn)
}

// Start serves h and blocks until Shutdown is called, ctx is cancelled or
// the listener fails. It may be called once.
func (c *Controller) Start(ctx context.Context, h http.Handler) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("server: already started")
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.mu.Lock()
	for _, fn := range c.onShutdown {
		srv.RegisterOnShutdown(fn)
	}
	c.mu.Unlock()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.logger.Info("Starting HTTP server", slog.String("address", c.ln.Addr().String()))
		if err := srv.Serve(c.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-c.stop:
			c.logger.Info("Shutdown requested")
		case <-gCtx.Done():
			c.logger.Info("Context cancelled, initiating shutdown")
		}

		c.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			// Drop whatever is still open rather than leave it half closed.
			_ = srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	c.logger.Info("Server stopped successfully")
	return nil
}

// Shutdown asks a running Start to return. It does not wait, so it is safe
// to call from a request handler; calling it again, or before Start, is a
// no-op apart from making a later Start return immediately.
func (c *Controller) Shutdown() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done is closed once Shutdown has been called.
func (c *Controller) Done() <-chan struct{} { return c.stop }
