// Package server wraps an HTTP server with graceful shutdown and SIGHUP
// configuration reload.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/taraforge/attacktree/pkg/logging"
)

// ReloadFunc re-reads configuration or graph data on SIGHUP.
type ReloadFunc func() error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities.
type GracefulServer struct {
	server       *http.Server
	log          logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	reloadMu     sync.RWMutex
	reloadFn     ReloadFunc
}

// NewGracefulServer creates a graceful HTTP server on addr.
func NewGracefulServer(addr string, handler http.Handler, log logging.Logger) *GracefulServer {
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		log:        log,
		shutdownCh: make(chan struct{}),
	}
}

// Start serves until a shutdown signal arrives.
func (gs *GracefulServer) Start() error {
	go gs.handleSignals()

	gs.log.Info("starting HTTP server", logging.String("addr", gs.server.Addr))
	if err := gs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains connections within the timeout.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.log.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))
		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.log.Error("shutdown failed", logging.Error(shutdownErr))
		} else {
			gs.log.Info("server shutdown complete")
		}
	})
	return err
}

// handleSignals listens for OS signals and triggers shutdown or reload.
func (gs *GracefulServer) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			gs.log.Info("received shutdown signal", logging.String("signal", sig.String()))
			if err := gs.Shutdown(30 * time.Second); err != nil {
				os.Exit(1)
			}
			os.Exit(0)

		case syscall.SIGHUP:
			gs.log.Info("received SIGHUP, reloading")
			if err := gs.Reload(); err != nil {
				gs.log.Error("reload failed", logging.Error(err))
			}
		}
	}
}

// IsShuttingDown reports whether shutdown has been initiated.
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// SetReloadFunc sets the function invoked on SIGHUP.
func (gs *GracefulServer) SetReloadFunc(fn ReloadFunc) {
	gs.reloadMu.Lock()
	defer gs.reloadMu.Unlock()
	gs.reloadFn = fn
}

// Reload invokes the configured reload function.
func (gs *GracefulServer) Reload() error {
	gs.reloadMu.RLock()
	fn := gs.reloadFn
	gs.reloadMu.RUnlock()

	if fn == nil {
		gs.log.Warn("reload requested but no reload function configured")
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	gs.log.Info("reload complete")
	return nil
}
