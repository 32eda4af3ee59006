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

	"github.com/chriskh369/studyhub-agent/app/api"
	"github.com/chriskh369/studyhub-agent/app/cfg"
	"github.com/chriskh369/studyhub-agent/app/database"
	"github.com/chriskh369/studyhub-agent/app/gist"
	"github.com/chriskh369/studyhub-agent/app/notify"
	"github.com/chriskh369/studyhub-agent/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting StudyHub Agent", "version", appConfig.Version)

	// Database connection
	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appConfig.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "migration_version", version, "dirty", dirty)

	ledgerRepo := database.NewLedgerRepository(db)

	// Shared HTTP client for gist fetches and sink deliveries
	httpClient := &http.Client{
		Timeout: time.Duration(appConfig.FetchTimeout) * time.Second,
	}

	gistClient := gist.NewClient(appConfig.APIBase, appConfig.GistID, appConfig.GistFile,
		appConfig.GistToken, appConfig.UserAgent,
		time.Duration(appConfig.FetchTimeout)*time.Second, httpClient)

	// Notification sinks
	registry := notify.NewRegistry(appConfig.SinksDir, httpClient, appConfig.UserAgent)
	if err := registry.Run(); err != nil {
		slog.Error("Failed to load sink configurations", "dir", appConfig.SinksDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Sink configurations loaded", "count", registry.SinkCount(), "active", registry.Active())

	// Scheduler
	status := tasks.NewStatus()
	scheduler := tasks.NewScheduler(gistClient, ledgerRepo, registry, status)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "poll_interval", appConfig.PollInterval)

	// HTTP server
	apiHandler := api.NewHandler(ledgerRepo, status, scheduler, registry.SinkCount(),
		appConfig.Version, appConfig.BuildNumber)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer; its in-flight run finishes or is
	// cancelled before the database handle closes.
	slog.Info("Shutdown complete")
}
