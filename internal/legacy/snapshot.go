// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package legacy reconciles catalog data against cached snapshots of the
// previous publishing system. Snapshots are JSON files named
// categories-<mainKey>.json and products-<mainKey>.json; the category
// snapshot also steers exports (allow-list, parent and position
// overrides) for catalogs that were curated in the old system.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"partspress/internal/models"
	"partspress/internal/storage"
)

// FlexString decodes a JSON value that may arrive as a string or a
// number. Snapshot files mix both for positions and prices.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// CategoryRef is a product membership entry inside a snapshot category.
type CategoryRef struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
}

// SnapshotCategory is one category as the old system published it.
type SnapshotCategory struct {
	ID              int64           `json:"id"`
	Slug            string          `json:"slug"`
	Key             string          `json:"key"`
	Name            string          `json:"name"`
	Parent          int64           `json:"parent"`
	PosNum          FlexString      `json:"pos_num"`
	MenuOrder       FlexString      `json:"menu_order"`
	Position        FlexString      `json:"position"`
	LangName        *models.LangMap `json:"lang_name"`
	LangDesc        *models.LangMap `json:"lang_desc"`
	CatalogImageURL string          `json:"product_catalog_image_url"`
	Products        []CategoryRef   `json:"products"`
}

// EffectiveSlug returns the slug, falling back to the key field.
func (c *SnapshotCategory) EffectiveSlug() string {
	if s := strings.TrimSpace(c.Slug); s != "" {
		return s
	}
	return strings.TrimSpace(c.Key)
}

// ProductCategoryRef is a category membership entry inside a snapshot
// product.
type ProductCategoryRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// SnapshotProduct is one product as the old system published it.
type SnapshotProduct struct {
	ID           int64                `json:"id"`
	SKU          string               `json:"sku"`
	Name         string               `json:"name"`
	LangName     *models.LangMap      `json:"lang_name"`
	LangDesc     *models.LangMap      `json:"lang_desc"`
	PosNum       FlexString           `json:"pos_num"`
	MenuOrder    FlexString           `json:"menu_order"`
	NoUnits      FlexString           `json:"no_units"`
	Price        FlexString           `json:"price"`
	RegularPrice FlexString           `json:"regular_price"`
	Categories   []ProductCategoryRef `json:"categories"`
}

// Snapshot bundles both files for one main key.
type Snapshot struct {
	MainKey    string
	Categories []SnapshotCategory
	Products   []SnapshotProduct
}

// LoadCategories reads categories-<mainKey>.json from the given store.
// A missing file is not an error; exports simply run without overrides.
func LoadCategories(ctx context.Context, src storage.Store, mainKey string) ([]SnapshotCategory, error) {
	if mainKey == "" || src == nil {
		return nil, nil
	}
	data, err := src.Get(ctx, "categories-"+mainKey+".json")
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot categories %s: %w", mainKey, err)
	}
	var categories []SnapshotCategory
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse snapshot categories %s: %w", mainKey, err)
	}
	return categories, nil
}

// LoadSnapshot reads both snapshot files for a main key. The category
// file must exist; a missing product file leaves Products empty.
func LoadSnapshot(ctx context.Context, src storage.Store, mainKey string) (*Snapshot, error) {
	categories, err := LoadCategories(ctx, src, mainKey)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return nil, nil
	}

	snap := &Snapshot{MainKey: mainKey, Categories: categories}
	data, err := src.Get(ctx, "products-"+mainKey+".json")
	if errors.Is(err, storage.ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot products %s: %w", mainKey, err)
	}
	if err := json.Unmarshal(data, &snap.Products); err != nil {
		return nil, fmt.Errorf("parse snapshot products %s: %w", mainKey, err)
	}
	return snap, nil
}

// ParseSnapshot decodes uploaded snapshot bytes without touching a
// store. productsData may be empty.
func ParseSnapshot(mainKey string, categoriesData, productsData []byte) (*Snapshot, error) {
	var categories []SnapshotCategory
	if err := json.Unmarshal(categoriesData, &categories); err != nil {
		return nil, fmt.Errorf("parse snapshot categories %s: %w", mainKey, err)
	}
	snap := &Snapshot{MainKey: mainKey, Categories: categories}
	if len(productsData) > 0 {
		if err := json.Unmarshal(productsData, &snap.Products); err != nil {
			return nil, fmt.Errorf("parse snapshot products %s: %w", mainKey, err)
		}
	}
	return snap, nil
}

// Overrides carries the per-slug export adjustments derived from a
// category snapshot.
type Overrides struct {
	// Allowed is the export allow-list. A nil map means no snapshot was
	// present and nothing gets filtered.
	Allowed map[string]bool
	// ParentBySlug maps a slug to the slug of its snapshot parent.
	ParentBySlug map[string]string
	// PositionBySlug maps a slug to its snapshot position string.
	PositionBySlug map[string]string
	// IDBySlug maps a slug to its snapshot id.
	IDBySlug map[string]int64
}

// BuildOverrides derives the export overrides from a category snapshot in
// a single pass over the entries. Returns nil for an empty snapshot.
func BuildOverrides(categories []SnapshotCategory) *Overrides {
	if len(categories) == 0 {
		return nil
	}
	o := &Overrides{
		Allowed:        make(map[string]bool, len(categories)),
		ParentBySlug:   make(map[string]string),
		PositionBySlug: make(map[string]string),
		IDBySlug:       make(map[string]int64, len(categories)),
	}
	byID := make(map[int64]*SnapshotCategory, len(categories))
	for i := range categories {
		cat := &categories[i]
		if cat.ID != 0 {
			byID[cat.ID] = cat
		}
		slug := cat.EffectiveSlug()
		if slug == "" {
			continue
		}
		o.Allowed[slug] = true
		if cat.ID != 0 {
			o.IDBySlug[slug] = cat.ID
		}
		if pos := string(cat.PosNum); pos != "" {
			o.PositionBySlug[slug] = pos
		}
	}
	for i := range categories {
		cat := &categories[i]
		slug := cat.EffectiveSlug()
		if slug == "" || cat.Parent == 0 {
			continue
		}
		parent, ok := byID[cat.Parent]
		if !ok {
			continue
		}
		parentSlug := parent.EffectiveSlug()
		if parentSlug != "" {
			o.ParentBySlug[slug] = parentSlug
		}
	}
	return o
}
