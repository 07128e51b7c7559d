package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/statuswatch/statuswatch/pkg/alerts"
	"github.com/statuswatch/statuswatch/pkg/api"
	"github.com/statuswatch/statuswatch/pkg/checker"
	"github.com/statuswatch/statuswatch/pkg/config"
	"github.com/statuswatch/statuswatch/pkg/incidents"
	"github.com/statuswatch/statuswatch/pkg/kv"
	"github.com/statuswatch/statuswatch/pkg/status"
)

const defaultCheckInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "/etc/statuswatch/statusd.json", "Path to config file")
	flag.Parse()

	var cfg config.StatusWatchConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(cfg.DBPath)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	siteName := cfg.SiteName
	if siteName == "" {
		siteName = "StatusWatch"
	}

	backoff := alerts.NewGlobalBackoff()
	sender := alerts.NewWebhookSender(backoff)
	registry := alerts.NewRegistry(store)
	dispatcher := alerts.NewDispatcher(registry, sender, siteName)

	tracker := incidents.NewTracker(incidents.NewKVStore(store), dispatcher)

	runner := checker.NewRunner(checker.NewHTTPChecker(), cfg.Concurrency)
	monitor := status.NewMonitor(cfg.BuildCategories(), runner, tracker)

	interval := time.Duration(cfg.CheckInterval)
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	go monitor.Run(ctx, interval)

	testLimiter := alerts.NewTestLimiter()
	go testLimiter.Run(ctx, time.Hour)

	server := api.NewServer(monitor, tracker, registry, testLimiter, sender, cfg.SiteURL, siteName)
	if err := server.Start(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

// openStore opens the SQLite-backed store, degrading to process-local memory
// when no path is configured or the database cannot be opened.
func openStore(dbPath string) kv.KV {
	if dbPath == "" {
		log.Printf("No db_path configured, using in-memory store")
		return kv.NewMemoryStore()
	}

	store, err := kv.NewSQLiteStore(dbPath)
	if err != nil {
		log.Printf("Failed to open database at %s, falling back to in-memory store: %v", dbPath, err)
		return kv.NewMemoryStore()
	}

	return store
}
