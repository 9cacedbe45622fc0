package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RiskLens/pkg/http"
	"RiskLens/pkg/logger"
)

type closer struct {
	name  string
	close func() error
}

// App owns the process lifecycle: it starts the HTTP server, waits for
// a termination signal, then shuts the server down and closes attached
// resources in registration order.
type App struct {
	server          *http.Server
	log             *logger.Logger
	shutdownTimeout time.Duration
	closers         []closer
}

// NewApp creates the application.
func NewApp(srv *http.Server, log *logger.Logger, shutdownTimeout time.Duration) *App {
	return &App{
		server:          srv,
		log:             log,
		shutdownTimeout: shutdownTimeout,
	}
}

// AddCloser registers a resource to close on shutdown.
func (a *App) AddCloser(name string, close func() error) {
	a.closers = append(a.closers, closer{name: name, close: close})
}

// Run blocks until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	if err := a.server.Start(); err != nil {
		return err
	}
	a.log.Info("application started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Info("shutting down", logger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("server shutdown failed", logger.Error(err))
	}

	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.log.Warn("close failed",
				logger.String("resource", c.name),
				logger.Error(err),
			)
		}
	}

	a.log.Info("application stopped")
	return nil
}
