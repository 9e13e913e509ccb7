package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-cull/internal/catalog"
	"photo-cull/internal/handlers"
	"photo-cull/internal/library"
	"photo-cull/internal/logging"
	"photo-cull/internal/memory"
	"photo-cull/internal/middleware"
	"photo-cull/internal/startup"
	"photo-cull/internal/store"
	"photo-cull/internal/thumbs"
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize libvips. Decodes fall back to pure Go when this fails.
	if err := thumbs.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using fallback decoder: %v", err)
	}
	defer thumbs.ShutdownVips()

	// Open the attribute database and load both stores into memory.
	ctx := context.Background()
	db, err := store.Open(ctx, config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	ratings, err := store.NewRatingStore(ctx, db)
	if err != nil {
		logging.Fatal("Failed to load ratings: %v", err)
	}
	categories, err := store.NewCategoryStore(ctx, db)
	if err != nil {
		logging.Fatal("Failed to load categories: %v", err)
	}

	scanner := catalog.NewScanner(config.PhotoDir)
	loader := thumbs.NewLoader(thumbs.NewFileDecoder(), thumbs.LoaderOptions{
		MaxEntries:   config.CacheMaxEntries,
		MaxBytes:     config.CacheMaxBytes,
		MaxDimension: config.ThumbnailDimension,
	})

	lib := library.New(scanner, ratings, categories, loader)

	// Subscribe before the initial scan starts, or its completion
	// event can slip past the prewarmer.
	if config.PrewarmEnabled {
		go prewarmOnScan(lib, lib.Subscribe())
	}

	// Kick off the initial scan in the background so the server is
	// reachable immediately.
	scanner.Start()

	if config.WatchEnabled {
		go scanner.Watch()
	}

	// Setup router and middleware
	h := handlers.New(lib, config.PhotoDir)
	router := h.Router(config.MetricsEnabled)
	handler := middleware.Metrics(middleware.Logger(router))

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, scanner, lib)

	startup.LogStartupComplete(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

// prewarmOnScan decodes thumbnails for the whole collection after
// every completed scan, so the first page of any browse is warm. The
// caller subscribes; doing it here would race the initial scan.
func prewarmOnScan(lib *library.Library, events <-chan library.Event) {
	defer lib.Unsubscribe(events)

	for event := range events {
		if event.Type != library.EventScan {
			continue
		}
		records := lib.Images()
		paths := make([]string, 0, len(records))
		for _, rec := range records {
			paths = append(paths, rec.Path)
		}
		logging.Info("Prewarming %d thumbnails", len(paths))
		lib.Loader().Prewarm(paths)
	}
}

func handleShutdown(srv *http.Server, scanner *catalog.Scanner, lib *library.Library) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scanner.Stop()

	// Wait for in-flight attribute writes to reach the database.
	lib.Flush()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	logging.Info("Shutdown complete")
}
