// Package main implements the entry point for the storefront API server:
// account signup and OTP-verified login, a product catalog and transactional
// order placement over PostgreSQL.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuuti/storefront-api/internal/config"
	"github.com/fuuti/storefront-api/internal/platform/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.cleanup()

	if err := run(app); err != nil {
		appLogger.Error("Server terminated with error", "error", err)
		os.Exit(1)
	}
}

// run starts the HTTP server and blocks until a termination signal arrives,
// then drains in-flight requests.
func run(app *application) error {
	server := &http.Server{
		Addr:              app.addr(),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		app.logger.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	app.logger.Info("Server stopped")
	return nil
}
