package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownFunc releases one resource during shutdown.
type ShutdownFunc func(context.Context) error

// ShutdownManager drains HTTP servers and releases resources on SIGINT or
// SIGTERM, bounded by a single timeout.
type ShutdownManager struct {
	logger  *Logger
	servers []*http.Server
	funcs   []ShutdownFunc
	timeout time.Duration
}

// NewShutdownManager creates a shutdown manager. A zero timeout defaults
// to 30 seconds.
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{logger: logger, timeout: timeout}
}

// RegisterServer adds an HTTP server to drain during shutdown.
func (sm *ShutdownManager) RegisterServer(server *http.Server) {
	sm.servers = append(sm.servers, server)
}

// RegisterFunc adds a cleanup function to run after the servers drain.
func (sm *ShutdownManager) RegisterFunc(fn ShutdownFunc) {
	sm.funcs = append(sm.funcs, fn)
}

// Wait blocks until a shutdown signal arrives, then drains the registered
// servers and runs the cleanup functions in registration order.
func (sm *ShutdownManager) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.Infof("Received signal %s, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	var failures int
	for _, server := range sm.servers {
		sm.logger.WithField("addr", server.Addr).Info("Shutting down HTTP server")
		if err := server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("HTTP server shutdown error")
			failures++
		}
	}

	for _, fn := range sm.funcs {
		if err := fn(ctx); err != nil {
			sm.logger.WithError(err).Error("Shutdown cleanup failed")
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("shutdown completed with %d errors", failures)
	}
	sm.logger.Info("Graceful shutdown complete")
	return nil
}
