// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ImportResult counts what a snapshot import touched.
type ImportResult struct {
	MainKey           string `json:"mainKey"`
	CategoriesCreated int    `json:"categoriesCreated"`
	CategoriesUpdated int    `json:"categoriesUpdated"`
	ProductsCreated   int    `json:"productsCreated"`
	ProductsUpdated   int    `json:"productsUpdated"`
	LinksInserted     int    `json:"linksInserted"`
}

// Importer writes a validated snapshot into the relational schema. The
// whole main key runs in one transaction so a failure leaves the catalog
// untouched.
type Importer struct {
	db *sql.DB
}

// NewImporter returns an Importer over the given database.
func NewImporter(db *sql.DB) *Importer {
	return &Importer{db: db}
}

// Run imports one snapshot. Positions supplies per-link drawing position
// overrides; pass nil to default all links to position 0.
func (im *Importer) Run(ctx context.Context, snap *Snapshot, positions PositionMap) (*ImportResult, error) {
	if positions == nil {
		positions = PositionMap{}
	}
	result := &ImportResult{MainKey: snap.MainKey}

	byID := make(map[int64]*SnapshotCategory, len(snap.Categories))
	bySlug := make(map[string]*SnapshotCategory, len(snap.Categories))
	for i := range snap.Categories {
		cat := &snap.Categories[i]
		if cat.ID != 0 {
			byID[cat.ID] = cat
		}
		if slug := cat.EffectiveSlug(); slug != "" {
			bySlug[slug] = cat
		}
	}
	productByID := make(map[int64]*SnapshotProduct, len(snap.Products))
	for i := range snap.Products {
		if snap.Products[i].ID != 0 {
			productByID[snap.Products[i].ID] = &snap.Products[i]
		}
	}

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	pathCache := make(map[int64]string)

	for i := range snap.Categories {
		cat := &snap.Categories[i]
		key := cat.EffectiveSlug()
		if key == "" {
			continue
		}

		parentKey := ""
		if cat.Parent != 0 {
			if parent, ok := byID[cat.Parent]; ok {
				parentKey = parent.EffectiveSlug()
			}
		}
		// Slug hierarchy fallback for categories whose snapshot parent is
		// gone: the immediate prefix is the parent when it exists in the
		// batch or the database.
		if parentKey == "" && key != snap.MainKey && strings.Contains(key, "-") {
			candidate := key[:strings.LastIndex(key, "-")]
			if _, ok := bySlug[candidate]; ok {
				parentKey = candidate
			} else {
				var existing string
				err := tx.QueryRowContext(ctx, `SELECT key FROM categories WHERE key = $1`, candidate).Scan(&existing)
				if err == nil {
					parentKey = candidate
				} else if err != sql.ErrNoRows {
					return nil, fmt.Errorf("check parent candidate %s: %w", candidate, err)
				}
			}
		}

		nameSV, nameEN := cat.Name, cat.Name
		descSV, descEN := "", ""
		if cat.LangName != nil {
			if cat.LangName.SE != "" {
				nameSV = cat.LangName.SE
			}
			if cat.LangName.EN != "" {
				nameEN = cat.LangName.EN
			}
		}
		if cat.LangDesc != nil {
			descSV = cat.LangDesc.SE
			descEN = cat.LangDesc.EN
		}

		position := firstInt(cat.PosNum, cat.MenuOrder, cat.Position)
		isMain := cat.Parent == 0 && key == snap.MainKey

		var catalogImage *string
		if url := strings.TrimSpace(cat.CatalogImageURL); url != "" {
			name := url[strings.LastIndex(url, "/")+1:]
			if name != "" {
				catalogImage = &name
			}
		}

		var existed bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE key = $1)`, key).Scan(&existed); err != nil {
			return nil, fmt.Errorf("check category %s: %w", key, err)
		}

		path := buildPath(cat, byID, pathCache)
		if path == "" {
			path = key
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (key, path, name_sv, desc_sv, name_en, desc_en, position, parent_key, is_main, catalog_image, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (key) DO UPDATE SET
				path = excluded.path,
				name_sv = excluded.name_sv,
				desc_sv = excluded.desc_sv,
				name_en = excluded.name_en,
				desc_en = excluded.desc_en,
				position = excluded.position,
				parent_key = excluded.parent_key,
				is_main = excluded.is_main,
				catalog_image = excluded.catalog_image,
				updated_at = NOW()
		`, key, path, nameSV, descSV, nameEN, descEN, position, parentKey, isMain, catalogImage)
		if err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", key, err)
		}
		if existed {
			result.CategoriesUpdated++
		} else {
			result.CategoriesCreated++
		}
	}

	for i := range snap.Products {
		prod := &snap.Products[i]
		sku := strings.TrimSpace(prod.SKU)
		if sku == "" {
			continue
		}

		nameSV, nameEN := prod.Name, prod.Name
		descSV, descEN := "", ""
		if prod.LangName != nil {
			if prod.LangName.SE != "" {
				nameSV = prod.LangName.SE
			}
			if prod.LangName.EN != "" {
				nameEN = prod.LangName.EN
			}
		}
		if prod.LangDesc != nil {
			descSV = prod.LangDesc.SE
			descEN = prod.LangDesc.EN
		}
		price := strings.TrimSpace(string(prod.Price))
		if price == "" {
			price = strings.TrimSpace(string(prod.RegularPrice))
		}
		var pricePtr *string
		if price != "" {
			pricePtr = &price
		}

		var existed bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&existed); err != nil {
			return nil, fmt.Errorf("check product %s: %w", sku, err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (sku, name_sv, desc_sv, name_en, desc_en, price, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (sku) DO UPDATE SET
				name_sv = excluded.name_sv,
				desc_sv = excluded.desc_sv,
				name_en = excluded.name_en,
				desc_en = excluded.desc_en,
				price = COALESCE(excluded.price, products.price),
				updated_at = NOW()
		`, sku, nameSV, descSV, nameEN, descEN, pricePtr)
		if err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", sku, err)
		}
		if existed {
			result.ProductsUpdated++
		} else {
			result.ProductsCreated++
		}
	}

	// Links for the incoming categories are rebuilt from scratch.
	var categoryKeys []string
	for i := range snap.Categories {
		if slug := snap.Categories[i].EffectiveSlug(); slug != "" {
			categoryKeys = append(categoryKeys, slug)
		}
	}
	if len(categoryKeys) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE category_key = ANY($1)`, categoryKeys); err != nil {
			return nil, fmt.Errorf("reset category links: %w", err)
		}
	}

	insertLink := func(sku, categoryKey string, pos Position) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_categories (product_sku, category_key, pos_num, no_units)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_sku, category_key, pos_num) DO NOTHING
		`, sku, categoryKey, pos.PosNum, strconv.Itoa(pos.NoUnits))
		return err
	}

	for i := range snap.Categories {
		cat := &snap.Categories[i]
		categoryKey := cat.EffectiveSlug()
		if categoryKey == "" {
			continue
		}
		for _, ref := range cat.Products {
			id := ref.ProductID
			if id == 0 {
				id = ref.ID
			}
			prod, ok := productByID[id]
			if !ok {
				continue
			}
			sku := strings.TrimSpace(prod.SKU)
			if sku == "" {
				continue
			}
			if err := insertLink(sku, categoryKey, positions.Lookup(sku, categoryKey)); err != nil {
				return nil, fmt.Errorf("insert link %s -> %s: %w", sku, categoryKey, err)
			}
			result.LinksInserted++
		}
	}

	// Memberships recorded only on the product side still count; missing
	// categories referenced there are auto-created as bare entries.
	for i := range snap.Products {
		prod := &snap.Products[i]
		sku := strings.TrimSpace(prod.SKU)
		if sku == "" {
			continue
		}
		for _, ref := range prod.Categories {
			slug := strings.TrimSpace(ref.Slug)
			if slug == "" {
				continue
			}
			if _, ok := bySlug[slug]; !ok {
				name := strings.TrimSpace(ref.Name)
				if name == "" {
					name = slug
				}
				parentKey := ""
				if strings.HasPrefix(slug, snap.MainKey+"-") {
					parentKey = snap.MainKey
				}
				_, err := tx.ExecContext(ctx, `
					INSERT INTO categories (key, path, name_sv, name_en, parent_key, updated_at)
					VALUES ($1, $1, $2, $2, $3, NOW())
					ON CONFLICT (key) DO NOTHING
				`, slug, name, parentKey)
				if err != nil {
					return nil, fmt.Errorf("auto-create category %s: %w", slug, err)
				}
				placeholder := SnapshotCategory{Slug: slug}
				bySlug[slug] = &placeholder
			}
			if err := insertLink(sku, slug, positions.Lookup(sku, slug)); err != nil {
				return nil, fmt.Errorf("insert link %s -> %s: %w", sku, slug, err)
			}
			result.LinksInserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	slog.Info("legacy snapshot imported",
		"main_key", snap.MainKey,
		"categories_created", result.CategoriesCreated,
		"categories_updated", result.CategoriesUpdated,
		"products_created", result.ProductsCreated,
		"products_updated", result.ProductsUpdated,
		"links", result.LinksInserted,
	)
	return result, nil
}

// buildPath reconstructs a backslash path by walking snapshot parent ids.
// Cycles terminate at the first repeated id via the cache.
func buildPath(cat *SnapshotCategory, byID map[int64]*SnapshotCategory, cache map[int64]string) string {
	if cat == nil {
		return ""
	}
	if cached, ok := cache[cat.ID]; ok {
		return cached
	}
	slug := cat.EffectiveSlug()
	if slug == "" {
		cache[cat.ID] = ""
		return ""
	}
	if cat.Parent == 0 {
		cache[cat.ID] = slug
		return slug
	}
	cache[cat.ID] = slug
	parentPath := buildPath(byID[cat.Parent], byID, cache)
	path := slug
	if parentPath != "" {
		path = parentPath + `\` + slug
	}
	cache[cat.ID] = path
	return path
}

// firstInt converts the first non-empty flex value to an int, defaulting
// to 0.
func firstInt(values ...FlexString) int {
	for _, v := range values {
		s := strings.TrimSpace(string(v))
		if s == "" {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return 0
}
