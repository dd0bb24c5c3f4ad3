// Package main is the entry point for the spare-parts catalog manager.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partspress/internal/cache"
	"partspress/internal/config"
	"partspress/internal/database"
	"partspress/internal/export"
	"partspress/internal/handlers"
	"partspress/internal/middleware"
	"partspress/internal/router"
	"partspress/internal/session"
	"partspress/internal/storage"
	"partspress/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments session cookies are Secure
	// (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())

	storageClient, err := storage.New(storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		CDNURL:        cfg.S3CDNURL,
		DataDir:       cfg.DataDir,
		LegacyDir:     cfg.LegacyCacheDir,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if cfg.HasS3() {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Info("using local filesystem storage", "dir", cfg.DataDir)
	}

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	machineStore := store.NewMachineCategoryStore(db)
	imageMapStore := store.NewImageMapStore(db)
	settingStore := store.NewSettingStore(db)

	snapshotCache := cache.NewSnapshotCache(valkeyClient, cache.DefaultSnapshotTTL)

	finder := &export.StoreImageFinder{Images: storageClient.CategoryImages}
	runner := &export.Runner{
		Categories: categoryStore,
		Products:   productStore,
		Machines:   machineStore,
		Settings:   settingStore,
		JSON:       storageClient.JSON,
		Legacy:     storageClient.Legacy,
		Assembler:  &export.Assembler{Finder: finder, Catalogs: storageClient.CatalogImages},
		Cache:      snapshotCache,
	}

	loginLimiter := middleware.NewRateLimiter(valkeyClient, "login", 10, time.Minute)

	h := router.Handlers{
		Auth:      handlers.NewAuth(sessionStore, userStore, loginLimiter),
		Public:    handlers.NewPublic(categoryStore, productStore, storageClient.JSON, storageClient.CatalogImages, snapshotCache),
		Catalog:   handlers.NewCatalog(categoryStore, productStore, settingStore, storageClient.CatalogImages),
		Machines:  handlers.NewMachines(machineStore, categoryStore),
		ImageMaps: handlers.NewImageMaps(categoryStore, productStore, imageMapStore, finder),
		Imports:   handlers.NewImports(db, categoryStore, productStore, storageClient.CategoryImages, storageClient.CatalogImages, storageClient.Legacy, runner),
	}

	r := router.New(cfg, sessionStore, loginLimiter, h)

	// WriteTimeout must accommodate full export runs and large CSV
	// imports.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain
	// connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
