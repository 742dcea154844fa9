package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"banshare/internal/config"
	"banshare/internal/crash"
	"banshare/internal/evidence"
	"banshare/internal/logger"
	"banshare/internal/platform"
	"banshare/internal/service"
	"banshare/internal/storage"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")
	crash.SetupCrashHandler()

	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging first
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	// Initialize database if enabled
	if cfg.Database.Enabled {
		if err := storage.Initialize(cfg); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		log.Println("Database connection established")
	}

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services and repositories
	service.Initialize(cfg)
	service.InitRepositories()

	// Prepare the evidence store
	store, err := evidence.NewStore(cfg.Evidence.RootDir, cfg.Evidence.MaxFileSize)
	if err != nil {
		log.Fatalf("Failed to prepare evidence store: %v", err)
	}
	service.SetEvidenceStore(store)

	// Connect to the chat platform
	pf, err := platform.NewTelegram(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize platform client: %v", err)
	}
	service.SetPlatform(pf)

	logger.Infof("banshare core ready")

	// Create a channel for receiving OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for signal
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down...", sig)
	log.Println("Server gracefully stopped")
}
