// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"partspress/internal/export"
	"partspress/internal/models"
	"partspress/internal/store"
)

// ImageMaps groups the admin endpoints for drawing hotspot overlays.
type ImageMaps struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	imageMaps  *store.ImageMapStore
	finder     export.ImageFinder
}

// NewImageMaps creates a new ImageMaps handler group.
func NewImageMaps(categories *store.CategoryStore, products *store.ProductStore, imageMaps *store.ImageMapStore, finder export.ImageFinder) *ImageMaps {
	return &ImageMaps{
		categories: categories,
		products:   products,
		imageMaps:  imageMaps,
		finder:     finder,
	}
}

// imageMapListItem summarizes one category in the overlay editor list.
// Position is serialized as a string so the editor treats it uniformly.
type imageMapListItem struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	Position  string     `json:"position"`
	ParentKey string     `json:"parent_key"`
	HasMap    bool       `json:"has_map"`
	UpdatedAt *time.Time `json:"updated_at"`
	ImageURL  string     `json:"image_url"`
}

// List returns categories around a main key with overlay status and the
// resolved drawing URL. Without a main key there is nothing to edit.
func (h *ImageMaps) List(w http.ResponseWriter, r *http.Request) {
	mainKey := strings.TrimSpace(r.URL.Query().Get("mainKey"))
	if mainKey == "" {
		writeJSON(w, http.StatusOK, []imageMapListItem{})
		return
	}

	categories, err := h.categories.ListAround(mainKey)
	if err != nil {
		slog.Error("list image map categories failed", "error", err, "mainKey", mainKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	keys := make([]string, 0, len(categories))
	for i := range categories {
		keys = append(keys, categories[i].Key)
	}
	maps := map[string]models.ImageMap{}
	if len(keys) > 0 {
		maps, err = h.imageMaps.FindMany(keys)
		if err != nil {
			slog.Error("load image maps failed", "error", err, "mainKey", mainKey)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	items := make([]imageMapListItem, 0, len(categories))
	for i := range categories {
		c := &categories[i]
		item := imageMapListItem{
			Key:       c.Key,
			Name:      c.Name(),
			Position:  strconv.Itoa(c.Position),
			ParentKey: c.ParentKey,
			ImageURL:  h.finder.FindImage(r.Context(), c.Key, c.Path),
		}
		if im, ok := maps[c.Key]; ok {
			item.HasMap = store.HasHotspots(im.HTML)
			updatedAt := im.UpdatedAt
			item.UpdatedAt = &updatedAt
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// imageMapPayload is the stored overlay markup with its edit time.
type imageMapPayload struct {
	HTML      string    `json:"html"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail returns everything the overlay editor needs for one category:
// the drawing, the current markup, labelled children, and ordered parts.
func (h *ImageMaps) Detail(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}

	category, err := h.categories.FindByKey(key)
	if err != nil {
		slog.Error("category lookup failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusNotFound)
		return
	}

	im, err := h.imageMaps.Find(key)
	if err != nil {
		slog.Error("load image map failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	children, err := h.categories.ChildrenWithLabels(key)
	if err != nil {
		slog.Error("load child categories failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if children == nil {
		children = []models.CategoryChild{}
	}

	parts, err := h.products.PartsForCategory(key)
	if err != nil {
		slog.Error("load category parts failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var payload *imageMapPayload
	if im != nil {
		payload = &imageMapPayload{HTML: im.HTML, UpdatedAt: im.UpdatedAt}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":              category.Key,
		"name":             category.Name(),
		"position":         strconv.Itoa(category.Position),
		"parent_key":       category.ParentKey,
		"image_url":        h.finder.FindImage(r.Context(), category.Key, category.Path),
		"map":              payload,
		"child_categories": children,
		"products":         export.PartItems(parts),
	})
}

// Upsert stores the overlay markup for a category.
func (h *ImageMaps) Upsert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key  string `json:"key"`
		HTML string `json:"html"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}
	key := strings.TrimSpace(body.Key)
	if key == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}

	category, err := h.categories.FindByKey(key)
	if err != nil {
		slog.Error("category lookup failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusNotFound)
		return
	}

	if err := h.imageMaps.Upsert(key, body.HTML); err != nil {
		slog.Error("save image map failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, respOK)
}

// Delete removes the overlay markup for a category.
func (h *ImageMaps) Delete(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}
	if err := h.imageMaps.Delete(key); err != nil {
		slog.Error("delete image map failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
