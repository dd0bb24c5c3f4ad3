// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partspress/internal/models"
)

func TestImageMapListWithoutMainKey(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/image-maps", nil)
	env.Maps.List(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var items []imageMapListItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items: got %d, want 0", len(items))
	}
}

func TestImageMapLifecycle(t *testing.T) {
	env := newTestEnv(t)
	keys := []string{"maptest", "maptest-deck"}
	cleanCategories(t, env.DB, keys...)
	t.Cleanup(func() { cleanCategories(t, env.DB, keys...) })

	if err := env.Categories.Upsert(&models.Category{Key: keys[0], Path: "MapTest", NameSV: "Kartmaskin", IsMain: true}); err != nil {
		t.Fatalf("seed main: %v", err)
	}
	if err := env.Categories.Upsert(&models.Category{Key: keys[1], Path: `MapTest\Deck`, ParentKey: keys[0], NameSV: "Klippdäck", Position: 2}); err != nil {
		t.Fatalf("seed child: %v", err)
	}

	// Store an overlay.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/image-maps",
		strings.NewReader(`{"key":"`+keys[1]+`","html":"<map name=\"deck\"><area shape=\"rect\" coords=\"0,0,10,10\"></map>"}`))
	env.Maps.Upsert(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("upsert: got %d: %s", w.Code, w.Body.String())
	}

	// Storing against a missing category fails.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/api/image-maps", strings.NewReader(`{"key":"no-such-key","html":"<map></map>"}`))
	env.Maps.Upsert(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing category: got %d, want 404", w.Code)
	}

	// The listing shows the overlay as present.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/image-maps?mainKey="+keys[0], nil)
	env.Maps.List(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d: %s", w.Code, w.Body.String())
	}
	var items []imageMapListItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	var deck *imageMapListItem
	for i := range items {
		if items[i].Key == keys[1] {
			deck = &items[i]
		}
	}
	if deck == nil {
		t.Fatalf("child %q not listed", keys[1])
	}
	if !deck.HasMap {
		t.Error("has_map: got false, want true")
	}
	if deck.Position != "2" {
		t.Errorf("position: got %q, want \"2\"", deck.Position)
	}
	if deck.ParentKey != keys[0] {
		t.Errorf("parent_key: got %q", deck.ParentKey)
	}

	// Detail carries the stored markup.
	w = httptest.NewRecorder()
	r = withChiURLParam(httptest.NewRequest("GET", "/api/image-maps/"+keys[1], nil), "key", keys[1])
	env.Maps.Detail(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("detail: got %d: %s", w.Code, w.Body.String())
	}
	var detail struct {
		Key  string           `json:"key"`
		Map  *imageMapPayload `json:"map"`
		Kids []any            `json:"child_categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Map == nil || !strings.Contains(detail.Map.HTML, "<area") {
		t.Errorf("map payload: got %+v", detail.Map)
	}

	// Delete removes the overlay but keeps the category.
	w = httptest.NewRecorder()
	r = withChiURLParam(httptest.NewRequest("DELETE", "/api/image-maps/"+keys[1], nil), "key", keys[1])
	env.Maps.Delete(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got %d: %s", w.Code, w.Body.String())
	}
	im, err := env.ImageMaps.Find(keys[1])
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if im != nil {
		t.Error("overlay survived delete")
	}
}

func TestImageMapDetailMissingCategory(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := withChiURLParam(httptest.NewRequest("GET", "/api/image-maps/no-such-key", nil), "key", "no-such-key")
	env.Maps.Detail(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Category not found." {
		t.Errorf("body: got %q", got)
	}
}
