// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"partspress/internal/cache"
	"partspress/internal/database"
	"partspress/internal/export"
	"partspress/internal/middleware"
	"partspress/internal/session"
	"partspress/internal/storage"
	"partspress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "partspress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "partspress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "snapshot:*", "ratelimit:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests. Storage
// is local under a per-test temp directory.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Sessions   *session.Store
	Users      *store.UserStore
	Categories *store.CategoryStore
	Products   *store.ProductStore
	Machines   *store.MachineCategoryStore
	ImageMaps  *store.ImageMapStore
	Settings   *store.SettingStore
	Storage    *storage.Client
	Cache      *cache.SnapshotCache
	Runner     *export.Runner

	Auth        *Auth
	Public      *Public
	Catalog     *Catalog
	MachinesAPI *Machines
	Maps        *ImageMaps
	Imports     *Imports
}

// newTestEnv creates a complete test environment with all handler
// dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	storageClient, err := storage.New(storage.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	products := store.NewProductStore(db)
	machines := store.NewMachineCategoryStore(db)
	imageMaps := store.NewImageMapStore(db)
	settings := store.NewSettingStore(db)
	snapshotCache := cache.NewSnapshotCache(vk, 1*time.Minute)

	finder := &export.StoreImageFinder{Images: storageClient.CategoryImages}
	runner := &export.Runner{
		Categories: categories,
		Products:   products,
		Machines:   machines,
		Settings:   settings,
		JSON:       storageClient.JSON,
		Legacy:     storageClient.Legacy,
		Assembler:  &export.Assembler{Finder: finder, Catalogs: storageClient.CatalogImages},
		Cache:      snapshotCache,
	}

	limiter := middleware.NewRateLimiter(vk, "login-test", 100, time.Minute)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Sessions:   sessions,
		Users:      users,
		Categories: categories,
		Products:   products,
		Machines:   machines,
		ImageMaps:  imageMaps,
		Settings:   settings,
		Storage:    storageClient,
		Cache:      snapshotCache,
		Runner:     runner,

		Auth:        NewAuth(sessions, users, limiter),
		Public:      NewPublic(categories, products, storageClient.JSON, storageClient.CatalogImages, snapshotCache),
		Catalog:     NewCatalog(categories, products, settings, storageClient.CatalogImages),
		MachinesAPI: NewMachines(machines, categories),
		Maps:        NewImageMaps(categories, products, imageMaps, finder),
		Imports:     NewImports(db, categories, products, storageClient.CategoryImages, storageClient.CatalogImages, storageClient.Legacy, runner),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds several chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cleanCategories removes test categories and their links by key.
func cleanCategories(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, k := range keys {
		db.Exec("DELETE FROM product_categories WHERE category_key = $1", k)
		db.Exec("DELETE FROM image_maps WHERE category_key = $1", k)
		db.Exec("DELETE FROM categories WHERE key = $1", k)
	}
}

// cleanProducts removes test products and their links by SKU.
func cleanProducts(t *testing.T, db *sql.DB, skus ...string) {
	t.Helper()
	for _, s := range skus {
		db.Exec("DELETE FROM product_categories WHERE product_sku = $1", s)
		db.Exec("DELETE FROM products WHERE sku = $1", s)
	}
}

// cleanUsers removes test users by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}
