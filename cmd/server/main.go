package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vkoski/wikiviews/internal/config"
	"github.com/vkoski/wikiviews/internal/handlers"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("Wikiviews Report Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  WIKI_PROJECT          Wiki project to report on (default: fi.wikipedia.org)\n")
		fmt.Printf("  OUTPUT_DIR            Local archive root (default: .)\n")
		fmt.Printf("  ARCHIVE_TYPE          Archive backend: local or gcs (default: local)\n")
		fmt.Printf("  ARCHIVE_BUCKET        GCS bucket when ARCHIVE_TYPE=gcs\n")
		fmt.Printf("  REPORT_LIMIT          Max table rows per report (default: 1000)\n")
		fmt.Printf("  TARGETS_FILE          YAML file with scheduled targets\n")
		fmt.Printf("  PORT                  Server port (default: 8080)\n")
		fmt.Printf("  HOST                  Server host (default: 0.0.0.0)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Wikiviews Report Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create server
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer server.Close()

	// Setup routes
	router := server.SetupRoutes()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Schedule report generation per target
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()

	for targetName, target := range cfg.Targets {
		if !target.Enabled {
			log.Printf("Skipping disabled target: %s", targetName)
			continue
		}

		targetName := targetName // capture for closure
		_, err := c.AddFunc(target.Schedule, func() {
			log.Printf("Scheduled generation starting for %s", targetName)
			if err := server.ProcessTarget(ctx, targetName); err != nil {
				log.Printf("Scheduled generation failed for %s: %v", targetName, err)
			} else {
				log.Printf("Scheduled generation completed for %s", targetName)
			}
		})

		if err != nil {
			log.Printf("Failed to schedule target %s: %v", targetName, err)
		} else {
			log.Printf("Scheduled target %s (%s) with cron: %s", targetName, target.Project, target.Schedule)
		}
	}

	c.Start()
	defer c.Stop()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		log.Printf("Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down server...")

	// Cancel background tasks
	cancel()

	// Stop cron scheduler
	c.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
