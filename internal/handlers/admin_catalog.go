// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"partspress/internal/importer"
	"partspress/internal/keys"
	"partspress/internal/models"
	"partspress/internal/storage"
	"partspress/internal/store"
)

// maxCatalogImageSize bounds a single catalog image upload.
const maxCatalogImageSize = 20 << 20

// Catalog groups the admin endpoints for categories, products, their
// links, translations, catalog images, and price settings.
type Catalog struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	settings   *store.SettingStore
	catalogs   storage.Store
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(categories *store.CategoryStore, products *store.ProductStore, settings *store.SettingStore, catalogStore storage.Store) *Catalog {
	return &Catalog{
		categories: categories,
		products:   products,
		settings:   settings,
		catalogs:   catalogStore,
	}
}

// ListCategories returns categories matching an optional query.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	items, err := c.categories.Search(query, limit)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateCategory inserts a category derived from a backslash path.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path     string `json:"path"`
		NameSV   string `json:"name_sv"`
		DescSV   string `json:"desc_sv"`
		NameEN   string `json:"name_en"`
		DescEN   string `json:"desc_en"`
		Position int    `json:"position"`
		IsMain   bool   `json:"is_main"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Category path is required.", http.StatusBadRequest)
		return
	}
	path := strings.TrimSpace(body.Path)
	if path == "" {
		http.Error(w, "Category path is required.", http.StatusBadRequest)
		return
	}
	key := keys.Canonical(path)
	if key == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}

	existing, err := c.categories.FindByKey(key)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Category key already exists.", http.StatusBadRequest)
		return
	}

	cat := &models.Category{
		Key:       key,
		Path:      path,
		NameSV:    strings.TrimSpace(body.NameSV),
		DescSV:    strings.TrimSpace(body.DescSV),
		NameEN:    strings.TrimSpace(body.NameEN),
		DescEN:    strings.TrimSpace(body.DescEN),
		Position:  body.Position,
		ParentKey: keys.Parent(path),
		IsMain:    body.IsMain,
	}
	if err := c.categories.Upsert(cat); err != nil {
		slog.Error("create category failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// UpdateCategories applies a batch of category edits.
func (c *Catalog) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []store.CategoryUpdate `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil || len(body.Items) == 0 {
		http.Error(w, "No category items provided.", http.StatusBadRequest)
		return
	}

	updated, err := c.categories.UpdateMany(body.Items)
	if err != nil {
		slog.Error("update categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// DeleteCategory removes a category, optionally cascading over its
// subtree and product links.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		http.Error(w, "Category key is required.", http.StatusBadRequest)
		return
	}
	cascade := parseBool(r.URL.Query().Get("cascade"))

	if !cascade {
		busy, err := c.categories.HasChildrenOrLinks(key)
		if err != nil {
			slog.Error("category delete check failed", "error", err, "key", key)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if busy {
			http.Error(w, "Category has children or products. Use cascade delete.", http.StatusBadRequest)
			return
		}
		if err := c.categories.Delete(key); err != nil {
			slog.Error("delete category failed", "error", err, "key", key)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": 1})
		return
	}

	deleted, err := c.categories.DeleteTree(key)
	if err != nil {
		slog.Error("delete category tree failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// productListItem is a product row enriched for the admin listing.
type productListItem struct {
	ID     string         `json:"id"`
	SKU    string         `json:"sku"`
	NameSV string         `json:"name_sv"`
	DescSV string         `json:"desc_sv"`
	NameEN string         `json:"name_en"`
	DescEN string         `json:"desc_en"`
	NamePL string         `json:"name_pl"`
	DescPL string         `json:"desc_pl"`
	Price  string         `json:"price"`
	Name   string         `json:"name"`
	Lang   models.LangMap `json:"lang_name"`
	Desc   models.LangMap `json:"lang_desc"`
	Cats   []string       `json:"categories"`
}

// ListProducts returns products matching an optional query, with the
// category keys each one is linked to.
func (c *Catalog) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	products, err := c.products.Search(query, limit)
	if err != nil {
		slog.Error("list products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	skus := make([]string, 0, len(products))
	for i := range products {
		skus = append(skus, products[i].SKU)
	}
	links := map[string][]string{}
	if len(skus) > 0 {
		links, err = c.products.LinksForSKUs(skus)
		if err != nil {
			slog.Error("load product links failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	items := make([]productListItem, 0, len(products))
	for i := range products {
		p := &products[i]
		item := productListItem{
			ID:     p.SKU,
			SKU:    p.SKU,
			NameSV: p.NameSV,
			DescSV: p.DescSV,
			NameEN: p.NameEN,
			DescEN: p.DescEN,
			Name:   p.Name(),
			Lang:   models.Lang(p.NameSV, p.NameEN, p.NamePL),
			Desc:   models.Lang(p.DescSV, p.DescEN, p.DescPL),
			Cats:   links[p.SKU],
		}
		if p.NamePL != nil {
			item.NamePL = *p.NamePL
		}
		if p.DescPL != nil {
			item.DescPL = *p.DescPL
		}
		if p.Price != nil {
			item.Price = *p.Price
		}
		if item.Cats == nil {
			item.Cats = []string{}
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateProduct inserts a new product by SKU.
func (c *Catalog) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SKU    string `json:"sku"`
		NameSV string `json:"name_sv"`
		DescSV string `json:"desc_sv"`
		NameEN string `json:"name_en"`
		DescEN string `json:"desc_en"`
		Price  string `json:"price"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "SKU is required.", http.StatusBadRequest)
		return
	}
	sku := strings.TrimSpace(body.SKU)
	if sku == "" {
		http.Error(w, "SKU is required.", http.StatusBadRequest)
		return
	}

	existing, err := c.products.FindBySKU(sku)
	if err != nil {
		slog.Error("product lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "SKU already exists.", http.StatusBadRequest)
		return
	}

	price := strings.TrimSpace(body.Price)
	if err := c.products.Upsert(&models.Product{
		SKU:    sku,
		NameSV: strings.TrimSpace(body.NameSV),
		DescSV: strings.TrimSpace(body.DescSV),
		NameEN: strings.TrimSpace(body.NameEN),
		DescEN: strings.TrimSpace(body.DescEN),
		Price:  &price,
	}); err != nil {
		slog.Error("create product failed", "error", err, "sku", sku)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sku": sku})
}

// UpdateProducts applies a batch of product edits.
func (c *Catalog) UpdateProducts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []store.ProductUpdate `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil || len(body.Items) == 0 {
		http.Error(w, "No product items provided.", http.StatusBadRequest)
		return
	}

	updated, err := c.products.UpdateMany(body.Items)
	if err != nil {
		slog.Error("update products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// DeleteProduct removes a product together with its category links.
func (c *Catalog) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimSpace(chi.URLParam(r, "sku"))
	if sku == "" {
		http.Error(w, "SKU is required.", http.StatusBadRequest)
		return
	}
	if err := c.products.Delete(sku); err != nil {
		slog.Error("delete product failed", "error", err, "sku", sku)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}

// AddProductLink links a product to a category at position 0.
func (c *Catalog) AddProductLink(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimSpace(chi.URLParam(r, "sku"))
	var body struct {
		CategoryKey string `json:"categoryKey"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "SKU and category key are required.", http.StatusBadRequest)
		return
	}
	categoryKey := strings.TrimSpace(body.CategoryKey)
	if sku == "" || categoryKey == "" {
		http.Error(w, "SKU and category key are required.", http.StatusBadRequest)
		return
	}

	category, err := c.categories.FindByKey(categoryKey)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusBadRequest)
		return
	}

	if err := c.products.AddLink(models.CategoryLink{
		ProductSKU:  sku,
		CategoryKey: categoryKey,
		PosNum:      0,
		NoUnits:     "1",
	}); err != nil {
		slog.Error("add product link failed", "error", err, "sku", sku)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, respOK)
}

// RemoveProductLink unlinks a product from a category at every position.
func (c *Catalog) RemoveProductLink(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimSpace(chi.URLParam(r, "sku"))
	categoryKey := strings.TrimSpace(chi.URLParam(r, "categoryKey"))
	if sku == "" || categoryKey == "" {
		http.Error(w, "SKU and category key are required.", http.StatusBadRequest)
		return
	}
	if err := c.products.RemoveLinksForCategory(sku, categoryKey); err != nil {
		slog.Error("remove product link failed", "error", err, "sku", sku)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, respOK)
}

// UploadCatalogImage replaces the catalog PDF preview image of a main
// category.
func (c *Catalog) UploadCatalogImage(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxCatalogImageSize); err != nil {
		http.Error(w, "Image file is required.", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Image file is required.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	category, err := c.categories.FindByKey(key)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusNotFound)
		return
	}
	if !category.IsMain {
		http.Error(w, "Category is not marked as main.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxCatalogImageSize))
	if err != nil {
		slog.Error("read catalog image failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if category.CatalogImage != nil && *category.CatalogImage != "" {
		if err := c.catalogs.Remove(r.Context(), *category.CatalogImage); err != nil {
			slog.Warn("remove old catalog image failed", "error", err, "key", key)
		}
	}

	fileName, err := importer.SaveCatalogImage(r.Context(), c.catalogs, c.categories, data, header.Filename, key)
	if err != nil {
		slog.Error("save catalog image failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key":           key,
		"catalog_image": fileName,
		"catalog_url":   c.catalogs.PublicURL(fileName),
	})
}

// DeleteCatalogImage clears the catalog image of a main category.
func (c *Catalog) DeleteCatalogImage(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		http.Error(w, "Main key is required.", http.StatusBadRequest)
		return
	}

	category, err := c.categories.FindByKey(key)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.Error(w, "Category not found.", http.StatusNotFound)
		return
	}
	if !category.IsMain {
		http.Error(w, "Category is not marked as main.", http.StatusBadRequest)
		return
	}

	if category.CatalogImage != nil && *category.CatalogImage != "" {
		if err := c.catalogs.Remove(r.Context(), *category.CatalogImage); err != nil {
			slog.Warn("remove catalog image failed", "error", err, "key", key)
		}
	}
	if err := c.categories.SetCatalogImage(key, nil); err != nil {
		slog.Error("clear catalog image failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key":           key,
		"catalog_image": "",
		"catalog_url":   "",
	})
}

// languageItem carries every text column of one translatable row.
type languageItem struct {
	ID     int64  `json:"id"`
	SKU    string `json:"sku"`
	NameSV string `json:"name_sv"`
	DescSV string `json:"desc_sv"`
	NameEN string `json:"name_en"`
	DescEN string `json:"desc_en"`
	NamePL string `json:"name_pl"`
	DescPL string `json:"desc_pl"`
}

// LanguageCategories lists categories for the translation editor.
func (c *Catalog) LanguageCategories(w http.ResponseWriter, r *http.Request) {
	c.ListCategories(w, r)
}

// LanguageProducts lists products for the translation editor.
func (c *Catalog) LanguageProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	limit := parseLimit(r.URL.Query().Get("limit"))

	items, err := c.products.Search(query, limit)
	if err != nil {
		slog.Error("list products for language failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateLanguage applies translation edits for categories or products.
// Every text field is overwritten, including Polish.
func (c *Catalog) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  string         `json:"type"`
		Items []languageItem `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil || len(body.Items) == 0 {
		http.Error(w, "No language items provided.", http.StatusBadRequest)
		return
	}

	updated := 0
	switch strings.ToLower(strings.TrimSpace(body.Type)) {
	case "category":
		for _, item := range body.Items {
			if item.ID == 0 {
				continue
			}
			if err := c.categories.UpdateLanguage(item.ID,
				strings.TrimSpace(item.NameSV), strings.TrimSpace(item.DescSV),
				strings.TrimSpace(item.NameEN), strings.TrimSpace(item.DescEN),
				strings.TrimSpace(item.NamePL), strings.TrimSpace(item.DescPL)); err != nil {
				slog.Error("update category language failed", "error", err, "id", item.ID)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			updated++
		}
	case "product":
		for _, item := range body.Items {
			sku := strings.TrimSpace(item.SKU)
			if sku == "" {
				continue
			}
			if err := c.products.UpdateLanguage(sku,
				strings.TrimSpace(item.NameSV), strings.TrimSpace(item.DescSV),
				strings.TrimSpace(item.NameEN), strings.TrimSpace(item.DescEN),
				strings.TrimSpace(item.NamePL), strings.TrimSpace(item.DescPL)); err != nil {
				slog.Error("update product language failed", "error", err, "sku", sku)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			updated++
		}
	default:
		http.Error(w, "Unknown language type.", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// GetPriceCurrency returns the configured currencies.
func (c *Catalog) GetPriceCurrency(w http.ResponseWriter, r *http.Request) {
	settings, err := c.settings.PriceCurrency()
	if err != nil {
		slog.Error("load price currency failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SetPriceCurrency stores a normalized currency configuration.
func (c *Catalog) SetPriceCurrency(w http.ResponseWriter, r *http.Request) {
	var body models.PriceCurrencySettings
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, "Base currency is required.", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.BaseCurrency) == "" {
		http.Error(w, "Base currency is required.", http.StatusBadRequest)
		return
	}

	saved, err := c.settings.SetPriceCurrency(body)
	if err != nil {
		slog.Error("save price currency failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
