// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"partspress/internal/keys"
	"partspress/internal/models"
	"partspress/internal/store"
)

// Machines groups the admin endpoints for the machine navigation tree
// and its links into product categories.
type Machines struct {
	machines   *store.MachineCategoryStore
	categories *store.CategoryStore
}

// NewMachines creates a new Machines handler group.
func NewMachines(machines *store.MachineCategoryStore, categories *store.CategoryStore) *Machines {
	return &Machines{machines: machines, categories: categories}
}

// List returns machine categories matching an optional query, links
// included.
func (m *Machines) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	items, err := m.machines.Search(query, limit)
	if err != nil {
		slog.Error("list machine categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.MachineCategory{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Create inserts a machine category. The key is slugified from the
// provided key or, when empty, from the Swedish or English name.
func (m *Machines) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key      string `json:"key"`
		NameSV   string `json:"name_sv"`
		NameEN   string `json:"name_en"`
		Position int    `json:"position"`
		ParentID *int64 `json:"parent_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Key is required.", http.StatusBadRequest)
		return
	}

	key := keys.Slugify(body.Key)
	if key == "" {
		key = keys.Slugify(body.NameSV)
	}
	if key == "" {
		key = keys.Slugify(body.NameEN)
	}
	if key == "" {
		http.Error(w, "Key is required.", http.StatusBadRequest)
		return
	}

	existing, err := m.machines.FindByKey(key)
	if err != nil {
		slog.Error("machine category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Key already exists.", http.StatusBadRequest)
		return
	}

	if _, err := m.machines.Create(key, strings.TrimSpace(body.NameSV), strings.TrimSpace(body.NameEN), body.Position, body.ParentID); err != nil {
		slog.Error("create machine category failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// Update applies a batch of machine category edits.
func (m *Machines) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []store.UpdateItem `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil || len(body.Items) == 0 {
		http.Error(w, "No machine categories provided.", http.StatusBadRequest)
		return
	}

	updated, err := m.machines.UpdateMany(body.Items)
	if err != nil {
		slog.Error("update machine categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// Delete removes a machine category. Cascade is the default; children
// and links go with it unless cascade=false is passed explicitly.
func (m *Machines) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid machine category id.", http.StatusBadRequest)
		return
	}

	cascade := true
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		cascade = parseBool(raw)
	}

	if !cascade {
		busy, err := m.machines.HasChildrenOrLinks(id)
		if err != nil {
			slog.Error("machine category delete check failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if busy {
			http.Error(w, "Machine category has children or linked product categories. Use cascade delete.", http.StatusBadRequest)
			return
		}
	}

	deleted, err := m.machines.Delete(id, cascade)
	if err != nil {
		slog.Error("delete machine category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// AddLink attaches a product category to a machine category, updating
// the position when the link already exists.
func (m *Machines) AddLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid machine category id.", http.StatusBadRequest)
		return
	}

	var body struct {
		CategoryKey string `json:"categoryKey"`
		Position    int    `json:"position"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}
	categoryKey := strings.TrimSpace(body.CategoryKey)
	if categoryKey == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}

	category, err := m.categories.FindByKey(categoryKey)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusBadRequest)
		return
	}

	if err := m.machines.UpsertLink(id, categoryKey, body.Position); err != nil {
		slog.Error("link machine category failed", "error", err, "id", id, "key", categoryKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, respOK)
}

// RemoveLink detaches a product category from a machine category.
func (m *Machines) RemoveLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid machine category id.", http.StatusBadRequest)
		return
	}
	categoryKey := strings.TrimSpace(chi.URLParam(r, "categoryKey"))
	if categoryKey == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}

	if err := m.machines.RemoveLink(id, categoryKey); err != nil {
		slog.Error("unlink machine category failed", "error", err, "id", id, "key", categoryKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, respOK)
}

// Hierarchy returns the full machine tree with resolved category links.
func (m *Machines) Hierarchy(w http.ResponseWriter, r *http.Request) {
	nodes, err := m.machines.Hierarchy()
	if err != nil {
		slog.Error("machine hierarchy failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if nodes == nil {
		nodes = []models.MachineNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}
