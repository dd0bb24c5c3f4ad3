// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"partspress/internal/models"
	"partspress/internal/store"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	env.Public.Health(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q", body["status"])
	}
}

func TestStatusCounts(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/status", nil)
	env.Public.Status(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body map[string]int
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"categoryCount", "productCount", "mainCount"} {
		if _, ok := body[field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/search", nil)
	env.Public.Search(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var hits []store.SearchHit
	if err := json.NewDecoder(w.Body).Decode(&hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits: got %d, want 0", len(hits))
	}
}

func TestSearchFindsProduct(t *testing.T) {
	env := newTestEnv(t)
	sku := "SEARCH-TEST-SKU"
	key := "search-test-cat"
	cleanProducts(t, env.DB, sku)
	cleanCategories(t, env.DB, key)
	t.Cleanup(func() {
		cleanProducts(t, env.DB, sku)
		cleanCategories(t, env.DB, key)
	})

	if err := env.Categories.Upsert(&models.Category{Key: key, Path: "Search-Test-Cat", NameSV: "Sökkategori"}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := env.Products.Upsert(&models.Product{SKU: sku, NameSV: "Unik sökdel"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := env.Products.AddLink(models.CategoryLink{ProductSKU: sku, CategoryKey: key, PosNum: 1, NoUnits: "1"}); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/search?query=SEARCH-TEST", nil)
	env.Public.Search(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}

	var hits []store.SearchHit
	if err := json.NewDecoder(w.Body).Decode(&hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	hit := hits[0]
	if hit.SKU != sku {
		t.Errorf("sku: got %q", hit.SKU)
	}
	if hit.CategoryKey != key {
		t.Errorf("category_key: got %q", hit.CategoryKey)
	}
}

func TestServeJSONRejectsBadNames(t *testing.T) {
	env := newTestEnv(t)

	tests := []string{"manifest.txt", "..%2Fsecrets.json", "nested%2Ffile.json"}
	for _, name := range tests {
		w := httptest.NewRecorder()
		r := withChiURLParam(httptest.NewRequest("GET", "/json/"+name, nil), "file", name)
		env.Public.ServeJSON(w, r)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", name, w.Code)
		}
	}
}

func TestServeJSONCachesFile(t *testing.T) {
	env := newTestEnv(t)
	name := "serve-test.json"
	payload := []byte(`{"hello":"world"}`)

	ctx := context.Background()
	if err := env.Storage.JSON.Put(ctx, name, payload, "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	t.Cleanup(func() {
		env.Storage.JSON.Remove(ctx, name)
		env.Cache.Invalidate(ctx, name)
	})

	w := httptest.NewRecorder()
	r := withChiURLParam(httptest.NewRequest("GET", "/json/"+name, nil), "file", name)
	env.Public.ServeJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if w.Body.String() != string(payload) {
		t.Errorf("body: got %q", w.Body.String())
	}

	// A second read hits the cache; removing the backing file must not
	// change the response within the TTL.
	if err := env.Storage.JSON.Remove(ctx, name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	w = httptest.NewRecorder()
	r = withChiURLParam(httptest.NewRequest("GET", "/json/"+name, nil), "file", name)
	env.Public.ServeJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("cached status: got %d", w.Code)
	}
	if w.Body.String() != string(payload) {
		t.Errorf("cached body: got %q", w.Body.String())
	}
}

func TestMainProductCatalogs(t *testing.T) {
	env := newTestEnv(t)
	key := "catalog-main-test"
	cleanCategories(t, env.DB, key)
	t.Cleanup(func() { cleanCategories(t, env.DB, key) })

	img := "catalog-main-test.jpg"
	cat := &models.Category{Key: key, Path: "Catalog-Main-Test", NameSV: "Katalogmaskin", IsMain: true, CatalogImage: &img}
	if err := env.Categories.Upsert(cat); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := env.Categories.SetCatalogImage(key, &img); err != nil {
		t.Fatalf("set catalog image: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/main-products/catalogs", nil)
	env.Public.MainProductCatalogs(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}

	var items []map[string]string
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, item := range items {
		if item["key"] == key {
			found = true
			if item["catalog_image"] != img {
				t.Errorf("catalog_image: got %q", item["catalog_image"])
			}
			if item["catalog_url"] == "" {
				t.Error("catalog_url is empty")
			}
		}
	}
	if !found {
		t.Errorf("main %q not listed", key)
	}
}
