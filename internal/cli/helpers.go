// Package cli implements the flowstudio commands on top of a Studio.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/internal/config"
	"github.com/aretw0/flowstudio/internal/logging"
	"github.com/aretw0/flowstudio/pkg/observability"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
			// Context cancelled elsewhere
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from the settings.
// Debug forces the debug level. Logs go to Stderr, apart from reports on Stdout.
func NewLogger(cfg config.LogConfig, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, format), nil
}

// NewStudio opens the configured store and builds a Studio over it. The
// caller closes the returned backend.
func NewStudio(cfg config.Config, logger *slog.Logger, withMetrics bool) (*flowstudio.Studio, *config.Backend, error) {
	backend, err := config.OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []flowstudio.Option{
		flowstudio.WithStore(backend.Store),
		flowstudio.WithLogger(logger),
		flowstudio.WithUILanguage(cfg.UILanguage),
		flowstudio.WithNodeSize(cfg.Layout.NodeWidth, cfg.Layout.NodeHeight, cfg.Layout.Margin),
	}
	if backend.Locker != nil {
		opts = append(opts, flowstudio.WithLocker(backend.Locker, cfg.Store.Redis.LockTTL))
	}
	if withMetrics {
		opts = append(opts, flowstudio.WithMetrics(observability.NewMetrics()))
	}
	logger.Debug("studio ready", "store", cfg.Store.Kind, "ui_language", cfg.UILanguage)
	return flowstudio.New(opts...), backend, nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
