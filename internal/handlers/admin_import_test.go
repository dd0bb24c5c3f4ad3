// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partspress/internal/models"
)

// multipartBody builds a multipart form with file fields and plain
// fields for import tests.
func multipartBody(t *testing.T, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".dat")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

const importCSV = "Type;Category Path;Artikel Id;Name SV;Desc SV;Name EN;Desc EN;Number;No Units\n" +
	"Produkt;ImportTest;;Importmaskin;;Import Machine;;;\n" +
	"Kategori;ImportTest\\Hjul;;Hjul;;Wheels;;3;\n" +
	"Artikel;ImportTest\\Hjul;IMP-SKU-1;Hjulaxel;;Wheel axle;;1;2\n"

func importTestKeys() []string { return []string{"importtest", "importtest-hjul"} }

func TestImportProductsRequiresCSV(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, nil, map[string]string{"dryRun": "1"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/products", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Products(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "CSV file is required." {
		t.Errorf("body: got %q", got)
	}
}

func TestImportProductsDryRun(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env.DB, importTestKeys()...)
	cleanProducts(t, env.DB, "IMP-SKU-1")

	body, ct := multipartBody(t, map[string][]byte{"csv": []byte(importCSV)}, map[string]string{"dryRun": "1"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/products", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Products(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK       bool     `json:"ok"`
		DryRun   bool     `json:"dryRun"`
		MainKeys []string `json:"mainKeys"`
		Actions  struct {
			ResetLinksForProducts int `json:"resetLinksForProducts"`
		} `json:"actions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || !resp.DryRun {
		t.Errorf("flags: ok=%v dryRun=%v", resp.OK, resp.DryRun)
	}
	if len(resp.MainKeys) != 1 || resp.MainKeys[0] != "importtest" {
		t.Errorf("mainKeys: got %v", resp.MainKeys)
	}
	if resp.Actions.ResetLinksForProducts != 1 {
		t.Errorf("resetLinksForProducts: got %d, want 1", resp.Actions.ResetLinksForProducts)
	}

	// A dry run must not touch the database.
	if cat, _ := env.Categories.FindByKey("importtest"); cat != nil {
		t.Error("dry run created a category")
	}
}

func TestImportProductsFullRun(t *testing.T) {
	env := newTestEnv(t)
	cleanCategories(t, env.DB, importTestKeys()...)
	cleanProducts(t, env.DB, "IMP-SKU-1")
	t.Cleanup(func() {
		cleanCategories(t, env.DB, importTestKeys()...)
		cleanProducts(t, env.DB, "IMP-SKU-1")
	})

	body, ct := multipartBody(t, map[string][]byte{"csv": []byte(importCSV)}, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/products", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Products(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK      bool `json:"ok"`
		Created struct {
			Categories int `json:"categories"`
			Products   int `json:"products"`
		} `json:"created"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK {
		t.Error("ok: got false")
	}
	if resp.Created.Categories != 2 {
		t.Errorf("created categories: got %d, want 2", resp.Created.Categories)
	}
	if resp.Created.Products != 1 {
		t.Errorf("created products: got %d, want 1", resp.Created.Products)
	}

	main, err := env.Categories.FindByKey("importtest")
	if err != nil || main == nil {
		t.Fatalf("main after import: %v", err)
	}
	if !main.IsMain {
		t.Error("imported produkt row is not main")
	}
	child, err := env.Categories.FindByKey("importtest-hjul")
	if err != nil || child == nil {
		t.Fatalf("child after import: %v", err)
	}
	if child.ParentKey != "importtest" {
		t.Errorf("child parent: got %q", child.ParentKey)
	}
	if p, _ := env.Products.FindBySKU("IMP-SKU-1"); p == nil {
		t.Error("product missing after import")
	}
}

func TestImportProductsRejectsInvalidRows(t *testing.T) {
	env := newTestEnv(t)

	badCSV := "Type;Category Path;Artikel Id\n" +
		";ImportTest;\n" +
		"Artikel;ImportTest;\n"
	body, ct := multipartBody(t, map[string][]byte{"csv": []byte(badCSV)}, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/products", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Products(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK         bool `json:"ok"`
		Validation struct {
			OK     bool `json:"ok"`
			Counts struct {
				MissingType int `json:"missingType"`
				MissingSKU  int `json:"missingSku"`
			} `json:"counts"`
		} `json:"validation"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || resp.Validation.OK {
		t.Error("validation should have failed")
	}
	if resp.Validation.Counts.MissingType != 1 {
		t.Errorf("missingType: got %d", resp.Validation.Counts.MissingType)
	}
	if resp.Validation.Counts.MissingSKU != 1 {
		t.Errorf("missingSku: got %d", resp.Validation.Counts.MissingSKU)
	}
}

func TestImportPricelist(t *testing.T) {
	env := newTestEnv(t)
	sku := "PRICE-SKU-1"
	cleanProducts(t, env.DB, sku)
	t.Cleanup(func() { cleanProducts(t, env.DB, sku) })

	if err := env.Products.Upsert(&models.Product{SKU: sku, NameSV: "Prisdel"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	priceCSV := "Artikelkod;Grundpris\n" + sku + ";123,50\nUNKNOWN-SKU;99\n"
	body, ct := multipartBody(t, map[string][]byte{"csv": []byte(priceCSV)}, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/pricelist", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Pricelist(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Updated int `json:"updated"`
		Missing int `json:"missing"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Updated != 1 {
		t.Errorf("updated: got %d, want 1", resp.Updated)
	}
	if resp.Missing != 1 {
		t.Errorf("missing: got %d, want 1", resp.Missing)
	}

	p, err := env.Products.FindBySKU(sku)
	if err != nil || p == nil {
		t.Fatalf("reload: %v", err)
	}
	if p.Price == nil || *p.Price != "123.50" {
		t.Errorf("price: got %v", p.Price)
	}
}

func TestImportLegacyRejectedSnapshotNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Missing slug/key makes validation fail the whole batch.
	categories := []byte(`[{"id": 1}]`)
	body, ct := multipartBody(t, map[string][]byte{"categories": categories}, map[string]string{"mainKey": "legacyrejtest"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/legacy", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Legacy(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK {
		t.Error("ok: got true, want false")
	}
	if _, err := env.Storage.Legacy.Get(ctx, "categories-legacyrejtest.json"); err == nil {
		t.Error("rejected snapshot was persisted")
	}
}

func TestImportLegacyDryRunDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	categories := []byte(`[{"id": 1, "slug": "legacydrytest", "name": "Legacy maskin"}]`)
	body, ct := multipartBody(t, map[string][]byte{"categories": categories}, map[string]string{
		"mainKey": "legacydrytest",
		"dryRun":  "1",
	})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/legacy", body)
	r.Header.Set("Content-Type", ct)
	env.Imports.Legacy(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK     bool `json:"ok"`
		DryRun bool `json:"dryRun"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || !resp.DryRun {
		t.Errorf("flags: ok=%v dryRun=%v", resp.OK, resp.DryRun)
	}
	if _, err := env.Storage.Legacy.Get(ctx, "categories-legacydrytest.json"); err == nil {
		t.Error("dry run persisted the snapshot")
	}
}

func TestFixParentsRequiresMainKey(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/fix-parents", strings.NewReader(`{}`))
	env.Imports.FixParents(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Main key is required." {
		t.Errorf("body: got %q", got)
	}
}

func TestFixParentsReattachesOrphans(t *testing.T) {
	env := newTestEnv(t)
	keys := []string{"fixtest", "fixtest-boom", "fixtest-boom-arm"}
	cleanCategories(t, env.DB, keys...)
	t.Cleanup(func() { cleanCategories(t, env.DB, keys...) })

	if err := env.Categories.Upsert(&models.Category{Key: keys[0], Path: "FixTest", IsMain: true}); err != nil {
		t.Fatalf("seed main: %v", err)
	}
	if err := env.Categories.Upsert(&models.Category{Key: keys[1], Path: `FixTest\Boom`, ParentKey: keys[0]}); err != nil {
		t.Fatalf("seed mid: %v", err)
	}
	// Orphan: stored parent does not exist.
	if err := env.Categories.Upsert(&models.Category{Key: keys[2], Path: `FixTest\Boom\Arm`, ParentKey: "fixtest-missing"}); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/import/fix-parents", strings.NewReader(`{"mainKey":"fixtest"}`))
	env.Imports.FixParents(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Updated int             `json:"updated"`
		Updates []fixParentItem `json:"updates"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Updated != 1 {
		t.Fatalf("updated: got %d, want 1: %+v", resp.Updated, resp.Updates)
	}

	orphan, err := env.Categories.FindByKey(keys[2])
	if err != nil || orphan == nil {
		t.Fatalf("reload orphan: %v", err)
	}
	if orphan.ParentKey != keys[1] {
		t.Errorf("parent after fix: got %q, want %q", orphan.ParentKey, keys[1])
	}
}

func TestGenerateJSONOnlyGlobal(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/generate-json", strings.NewReader(`{"onlyGlobal":true}`))
	env.Imports.GenerateJSON(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Files           []string `json:"files"`
		ContractVersion string   `json:"contractVersion"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ContractVersion == "" {
		t.Error("contractVersion is empty")
	}
	want := map[string]bool{"machine-categories.json": true, "price-settings.json": true}
	for _, f := range resp.Files {
		delete(want, f)
	}
	for f := range want {
		t.Errorf("missing published file %q", f)
	}
}
