package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifeoc/event-relay/app"
	"github.com/lifeoc/event-relay/app/api"
	"github.com/lifeoc/event-relay/app/cfg"
	"github.com/lifeoc/event-relay/app/metrics"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// help was shown
		return
	}

	cfg.SetupLogger(appCfg.Debug)

	slog.Info("Starting Event Relay server", "version", appCfg.Version)

	m := metrics.New()
	eventRelay, err := app.NewRelay(appCfg, m)
	if err != nil {
		slog.Error("Failed to initialize relay", "error", err)
		os.Exit(1)
	}

	apiHandler := api.NewHandler(eventRelay, appCfg.Version, appCfg.CMSEndpoint)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, m)

	// WriteTimeout covers the slowest publish plus retries
	writeTimeout := time.Duration(appCfg.PublishAttempts)*(appCfg.CMSTimeout+30*time.Second) + 30*time.Second

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server",
			"port", appCfg.Port,
			"cms_endpoint", appCfg.CMSEndpoint,
			"publish_attempts", appCfg.PublishAttempts,
			"timezone", appCfg.Timezone)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Event Relay shutdown complete")
}
