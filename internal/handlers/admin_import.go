// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"partspress/internal/export"
	"partspress/internal/importer"
	"partspress/internal/legacy"
	"partspress/internal/storage"
	"partspress/internal/store"
)

// maxImportSize bounds one import upload, CSV and image archive
// included.
const maxImportSize = 256 << 20

// Imports groups the endpoints that feed the catalog: CSV batches,
// price lists, legacy snapshots, and the JSON export trigger.
type Imports struct {
	db         *sql.DB
	categories *store.CategoryStore
	products   *store.ProductStore
	images     storage.Store
	catalogs   storage.Store
	legacy     storage.Store
	runner     *export.Runner
}

// NewImports creates a new Imports handler group.
func NewImports(db *sql.DB, categories *store.CategoryStore, products *store.ProductStore, images, catalogs, legacyStore storage.Store, runner *export.Runner) *Imports {
	return &Imports{
		db:         db,
		categories: categories,
		products:   products,
		images:     images,
		catalogs:   catalogs,
		legacy:     legacyStore,
		runner:     runner,
	}
}

// readUpload reads one named multipart file, returning nil bytes when
// the field is absent.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// dryRunRequested reads the dry-run switch from the form body or the
// query string.
func dryRunRequested(r *http.Request) bool {
	if v := r.FormValue("dryRun"); v != "" {
		return parseBool(v)
	}
	if v := r.FormValue("dry_run"); v != "" {
		return parseBool(v)
	}
	return parseBool(r.URL.Query().Get("dryRun"))
}

// Products ingests a catalog CSV batch with an optional drawing archive
// and catalog image. Validation always runs first; a dry run stops
// there and reports what a real run would do.
func (h *Imports) Products(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "CSV file is required.", http.StatusBadRequest)
		return
	}
	csvData, _, err := readUpload(r, "csv")
	if err != nil || len(csvData) == 0 {
		http.Error(w, "CSV file is required.", http.StatusBadRequest)
		return
	}
	zipData, _, err := readUpload(r, "zip")
	if err != nil {
		http.Error(w, "Invalid image archive.", http.StatusBadRequest)
		return
	}
	catalogData, catalogName, err := readUpload(r, "catalog")
	if err != nil {
		http.Error(w, "Invalid catalog image.", http.StatusBadRequest)
		return
	}
	dryRun := dryRunRequested(r)

	records, err := importer.ParseCSV(csvData)
	if err != nil {
		http.Error(w, "Invalid CSV file.", http.StatusBadRequest)
		return
	}
	report := importer.ValidateRows(records)

	var zipReport *importer.ZipReport
	if len(zipData) > 0 {
		zipReport, err = importer.ValidateZip(zipData)
		if err != nil {
			http.Error(w, "Invalid image archive.", http.StatusBadRequest)
			return
		}
	}

	if !report.OK {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":            false,
			"dryRun":        dryRun,
			"validation":    report,
			"zipValidation": zipReport,
		})
		return
	}

	if dryRun {
		mainKeys := []string{}
		mainSeen := map[string]bool{}
		skuSeen := map[string]bool{}
		for _, row := range importer.DecodeRows(records) {
			switch v := row.(type) {
			case importer.RowProdukt:
				if !mainSeen[v.Key] {
					mainSeen[v.Key] = true
					mainKeys = append(mainKeys, v.Key)
				}
			case importer.RowArtikel:
				skuSeen[v.SKU] = true
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":            true,
			"dryRun":        true,
			"validation":    report,
			"zipValidation": zipReport,
			"mainKeys":      mainKeys,
			"actions": map[string]any{
				"resetLinksForProducts": len(skuSeen),
			},
		})
		return
	}

	result, err := importer.Apply(r.Context(), h.db, records)
	if err != nil {
		slog.Error("apply import failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	imagesExtracted := 0
	if len(zipData) > 0 {
		imagesExtracted, err = importer.ExtractZip(r.Context(), zipData, h.images)
		if err != nil {
			slog.Error("extract image archive failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	if len(catalogData) > 0 && len(result.MainKeys) > 0 {
		if _, err := importer.SaveCatalogImage(r.Context(), h.catalogs, h.categories, catalogData, catalogName, result.MainKeys[0]); err != nil {
			slog.Error("save catalog image failed", "error", err, "mainKey", result.MainKeys[0])
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"dryRun":        false,
		"validation":    report,
		"zipValidation": zipReport,
		"categories":    result.CategoriesCreated + result.CategoriesUpdated,
		"products":      result.ProductsCreated + result.ProductsUpdated,
		"images":        imagesExtracted,
		"mainKeys":      result.MainKeys,
		"created": map[string]int{
			"categories": result.CategoriesCreated,
			"products":   result.ProductsCreated,
		},
		"updated": map[string]int{
			"categories": result.CategoriesUpdated,
			"products":   result.ProductsUpdated,
		},
		"resetLinksForProducts": result.LinksReset,
	})
}

// Pricelist updates product prices from a price list CSV. SKUs missing
// from the catalog are counted, never created.
func (h *Imports) Pricelist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "CSV file is required.", http.StatusBadRequest)
		return
	}
	csvData, _, err := readUpload(r, "csv")
	if err != nil || len(csvData) == 0 {
		http.Error(w, "CSV file is required.", http.StatusBadRequest)
		return
	}

	records, err := importer.ParseCSV(csvData)
	if err != nil {
		http.Error(w, "Invalid CSV file.", http.StatusBadRequest)
		return
	}
	result, err := importer.ApplyPricelist(records, h.products)
	if err != nil {
		slog.Error("apply pricelist failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Legacy ingests a snapshot pair exported by the previous catalog
// system. The files are validated before anything is stored; a rejected
// batch or a dry run leaves the snapshot store untouched.
func (h *Imports) Legacy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}
	mainKey := strings.TrimSpace(r.FormValue("mainKey"))
	if mainKey == "" {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}
	categoriesData, _, err := readUpload(r, "categories")
	if err != nil || len(categoriesData) == 0 {
		http.Error(w, "Categories file is required.", http.StatusBadRequest)
		return
	}
	productsData, _, err := readUpload(r, "products")
	if err != nil {
		http.Error(w, "Invalid products file.", http.StatusBadRequest)
		return
	}
	positionsData, _, err := readUpload(r, "positions")
	if err != nil {
		http.Error(w, "Invalid positions file.", http.StatusBadRequest)
		return
	}
	dryRun := dryRunRequested(r)

	ctx := r.Context()
	snap, err := legacy.ParseSnapshot(mainKey, categoriesData, productsData)
	if err != nil {
		slog.Error("parse snapshot failed", "error", err, "mainKey", mainKey)
		http.Error(w, "Invalid categories file.", http.StatusBadRequest)
		return
	}

	report := legacy.Validate(snap)
	if !report.OK {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":         false,
			"dryRun":     dryRun,
			"validation": report,
		})
		return
	}
	if dryRun {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"dryRun":     true,
			"validation": report,
		})
		return
	}

	var positions legacy.PositionMap
	if len(positionsData) > 0 {
		positions, err = legacy.ParsePositionsCSV(positionsData)
		if err != nil {
			http.Error(w, "Invalid positions file.", http.StatusBadRequest)
			return
		}
	}

	// The batch is accepted: persist the snapshot files so later exports
	// can reuse their slugs and orderings.
	if err := h.legacy.Put(ctx, "categories-"+mainKey+".json", categoriesData, "application/json"); err != nil {
		slog.Error("store snapshot categories failed", "error", err, "mainKey", mainKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(productsData) > 0 {
		if err := h.legacy.Put(ctx, "products-"+mainKey+".json", productsData, "application/json"); err != nil {
			slog.Error("store snapshot products failed", "error", err, "mainKey", mainKey)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	result, err := legacy.NewImporter(h.db).Run(ctx, snap, positions)
	if err != nil {
		slog.Error("snapshot import failed", "error", err, "mainKey", mainKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"dryRun":     false,
		"validation": report,
		"result":     result,
	})
}

// fixParentItem serializes one reattached category.
type fixParentItem struct {
	Key       string `json:"key"`
	ParentKey string `json:"parent_key"`
}

// skippedOrphanItem serializes a category the deny-list kept in place.
type skippedOrphanItem struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// FixParents reattaches orphaned categories under a main key by key
// prefix, skipping names the deny-list keeps off the root.
func (h *Imports) FixParents(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MainKey string `json:"mainKey"`
		DryRun  bool   `json:"dryRun"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}
	mainKey := strings.TrimSpace(body.MainKey)
	if mainKey == "" {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}

	categories, err := h.categories.ListAround(mainKey)
	if err != nil {
		slog.Error("list categories failed", "error", err, "mainKey", mainKey)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rows := make([]legacy.CategoryRow, 0, len(categories))
	for i := range categories {
		rows = append(rows, legacy.CategoryRow{
			Key:       categories[i].Key,
			ParentKey: categories[i].ParentKey,
			NameSV:    categories[i].NameSV,
			IsMain:    categories[i].IsMain,
		})
	}

	updates, skipped := legacy.FixParents(rows, mainKey, legacy.DefaultDenyList)

	applied := 0
	if !body.DryRun {
		for _, u := range updates {
			if err := h.categories.UpdateParentKey(u.Key, u.ParentKey); err != nil {
				slog.Error("update parent key failed", "error", err, "key", u.Key)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			applied++
		}
	}

	updateItems := make([]fixParentItem, 0, len(updates))
	for _, u := range updates {
		updateItems = append(updateItems, fixParentItem{Key: u.Key, ParentKey: u.ParentKey})
	}
	skippedItems := make([]skippedOrphanItem, 0, len(skipped))
	for _, s := range skipped {
		skippedItems = append(skippedItems, skippedOrphanItem{Key: s.Key, Name: s.Name, Reason: s.Reason})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"dryRun":  body.DryRun,
		"updated": applied,
		"updates": updateItems,
		"skipped": skippedItems,
	})
}

// GenerateJSON publishes the versioned catalog snapshots.
func (h *Imports) GenerateJSON(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MainKey    string `json:"mainKey"`
		SkipGlobal bool   `json:"skipGlobal"`
		OnlyGlobal bool   `json:"onlyGlobal"`
	}
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	result, err := h.runner.Run(r.Context(), export.RunOptions{
		MainKey:    strings.TrimSpace(body.MainKey),
		SkipGlobal: body.SkipGlobal,
		OnlyGlobal: body.OnlyGlobal,
	})
	if err != nil {
		if errors.Is(err, export.ErrNoMains) {
			http.Error(w, "No main products found.", http.StatusBadRequest)
			return
		}
		slog.Error("export run failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
