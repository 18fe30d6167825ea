package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"zara/catalog/internal/config"
	"zara/catalog/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting Zara catalog puller...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg.Log)
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Run the application
	if err := app.Run(ctx); err != nil {
		app.Close()
		log.Fatalf("Application exited with error: %v", err)
	}

	if err := app.Close(); err != nil {
		log.Warnf("⚠️ %v", err)
	}

	log.Info("Application finished successfully")
}

func configureLogging(cfg config.LogConfig) {
	// Level and format are validated by config.Load
	level, _ := log.ParseLevel(cfg.Level)
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
