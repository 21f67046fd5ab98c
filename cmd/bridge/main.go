package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/broker"
	"github.com/sensorbridge/sensorbridge/internal/cache"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/hub"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/router"
	"github.com/sensorbridge/sensorbridge/internal/services"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("SensorBridge starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the event store
	logger.Info("Opening store", "driver", cfg.Store.Driver)
	st, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to open store", "error", err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	// Latest-sample cache (optional)
	sampleCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to connect to cache", "error", err)
	}
	defer func() { _ = sampleCache.Close() }()

	// Viewer fanout hub
	eventHub := hub.New(logger)
	go eventHub.Run()
	defer eventHub.Stop()

	// Broker connection
	logger.Info("Connecting to broker", "type", cfg.MQTT.Type, "url", cfg.MQTT.URL)
	b, err := broker.New(cfg.MQTT, logger)
	if err != nil {
		logger.Fatal("Failed to connect to broker", "error", err)
	}
	defer b.Close()

	// Start ingesting sensor readings and device state echoes
	ingestor := services.NewIngestor(cfg.MQTT, b, st, sampleCache, eventHub, logger)
	if err := ingestor.Start(); err != nil {
		logger.Fatal("Failed to subscribe to broker topics", "error", err)
	}

	// Initialize router
	app := router.New(logger, *cfg, b, st, sampleCache, eventHub)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
