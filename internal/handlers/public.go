// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"partspress/internal/cache"
	"partspress/internal/storage"
	"partspress/internal/store"
)

// Public groups the unauthenticated read endpoints: health, status,
// catalog search, main product listings, and the published JSON
// artifacts. JSON reads go through the Valkey snapshot cache before
// falling back to storage.
type Public struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	json       storage.Store
	catalogs   storage.Store
	cache      *cache.SnapshotCache
}

// NewPublic creates a new Public handler group. cache may be nil when
// Valkey is not configured; JSON reads then always hit storage.
func NewPublic(categories *store.CategoryStore, products *store.ProductStore, jsonStore, catalogStore storage.Store, snapshotCache *cache.SnapshotCache) *Public {
	return &Public{
		categories: categories,
		products:   products,
		json:       jsonStore,
		catalogs:   catalogStore,
		cache:      snapshotCache,
	}
}

// Health reports process liveness.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status returns catalog entity counts.
func (p *Public) Status(w http.ResponseWriter, r *http.Request) {
	total, main, err := p.categories.Counts()
	if err != nil {
		slog.Error("category counts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	productCount, err := p.products.Count()
	if err != nil {
		slog.Error("product count failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"categoryCount": total,
		"productCount":  productCount,
		"mainCount":     main,
	})
}

// Search runs the public catalog search. Empty queries return an empty
// list rather than the whole catalog.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusOK, []store.SearchHit{})
		return
	}
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = "sv"
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	hits, err := p.products.SearchHits(query, lang, limit)
	if err != nil {
		slog.Error("catalog search failed", "error", err, "query", query)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []store.SearchHit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// mainProductItem is one entry in the main product listing.
type mainProductItem struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// MainProducts lists the main catalog categories.
func (p *Public) MainProducts(w http.ResponseWriter, r *http.Request) {
	mains, err := p.categories.ListMain()
	if err != nil {
		slog.Error("list main products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items := make([]mainProductItem, 0, len(mains))
	for i := range mains {
		items = append(items, mainProductItem{Key: mains[i].Key, Name: mains[i].Name()})
	}
	writeJSON(w, http.StatusOK, items)
}

// catalogItem is one entry in the catalog image listing.
type catalogItem struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	CatalogImage string `json:"catalog_image"`
	CatalogURL   string `json:"catalog_url"`
}

// MainProductCatalogs lists main categories with their catalog image URLs.
func (p *Public) MainProductCatalogs(w http.ResponseWriter, r *http.Request) {
	mains, err := p.categories.ListMain()
	if err != nil {
		slog.Error("list main catalogs failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items := make([]catalogItem, 0, len(mains))
	for i := range mains {
		item := catalogItem{Key: mains[i].Key, Name: mains[i].Name()}
		if mains[i].CatalogImage != nil && *mains[i].CatalogImage != "" {
			item.CatalogImage = *mains[i].CatalogImage
			item.CatalogURL = p.catalogs.PublicURL(*mains[i].CatalogImage)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// ServeJSON serves a published JSON artifact by file name, preferring the
// snapshot cache. Path traversal is cut off by rejecting separators.
func (p *Public) ServeJSON(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if name == "" || strings.ContainsAny(name, "/\\") || !strings.HasSuffix(name, ".json") {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}

	if p.cache != nil {
		if data, ok := p.cache.Get(r.Context(), name); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(data)
			return
		}
	}

	data, err := p.json.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Not found.", http.StatusNotFound)
			return
		}
		slog.Error("read published json failed", "error", err, "file", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.cache != nil {
		p.cache.Set(r.Context(), name, data)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(data)
}
