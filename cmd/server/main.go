package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itemgate/catalog-validator/internal/config"
	"github.com/itemgate/catalog-validator/internal/engine"
	"github.com/itemgate/catalog-validator/internal/httpapi"
	"github.com/itemgate/catalog-validator/internal/logging"
	"github.com/itemgate/catalog-validator/internal/session"
	"github.com/itemgate/catalog-validator/internal/version"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting", "version", version.String(), "addr", cfg.ListenAddr)

	registry := session.NewRegistry()
	eng := engine.New(cfg.Workers)

	handler := httpapi.NewHandler(registry, eng, cfg.EventBuffer, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(handler, cfg.APIKey)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
