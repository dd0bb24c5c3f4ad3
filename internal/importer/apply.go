// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ApplyResult counts what one import batch changed.
type ApplyResult struct {
	MainKeys          []string `json:"mainKeys"`
	CategoriesCreated int      `json:"categoriesCreated"`
	CategoriesUpdated int      `json:"categoriesUpdated"`
	ProductsCreated   int      `json:"productsCreated"`
	ProductsUpdated   int      `json:"productsUpdated"`
	LinksReset        int      `json:"linksReset"`
}

const upsertCategorySQL = `
	INSERT INTO categories (key, path, name_sv, desc_sv, name_en, desc_en, position, parent_key, is_main, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	ON CONFLICT (key) DO UPDATE SET
		path = excluded.path,
		name_sv = excluded.name_sv,
		desc_sv = excluded.desc_sv,
		name_en = excluded.name_en,
		desc_en = excluded.desc_en,
		position = excluded.position,
		parent_key = excluded.parent_key,
		is_main = excluded.is_main,
		updated_at = NOW()
`

// Translations and prices never arrive in the base export, so the upsert
// leaves them untouched.
const upsertProductSQL = `
	INSERT INTO products (sku, name_sv, desc_sv, name_en, desc_en, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (sku) DO UPDATE SET
		name_sv = excluded.name_sv,
		desc_sv = excluded.desc_sv,
		name_en = excluded.name_en,
		desc_en = excluded.desc_en,
		updated_at = NOW()
`

// Apply writes a validated batch in one transaction. Links for every
// incoming artikel SKU are dropped first and rebuilt from the batch.
func Apply(ctx context.Context, db *sql.DB, records []Record) (*ApplyResult, error) {
	rows := DecodeRows(records)

	skuSet := make(map[string]bool)
	var skus []string
	for _, row := range rows {
		if artikel, ok := row.(RowArtikel); ok && !skuSet[artikel.SKU] {
			skuSet[artikel.SKU] = true
			skus = append(skus, artikel.SKU)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	if len(skus) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_sku = ANY($1)`, skus); err != nil {
			return nil, fmt.Errorf("reset product links: %w", err)
		}
	}

	result := &ApplyResult{MainKeys: []string{}, LinksReset: len(skus)}
	mainKeySeen := make(map[string]bool)
	productSeen := make(map[string]bool)

	categoryExists := func(key string) (bool, error) {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE key = $1)`, key).Scan(&exists)
		return exists, err
	}

	for _, row := range rows {
		switch r := row.(type) {
		case RowProdukt:
			existed, err := categoryExists(r.Key)
			if err != nil {
				return nil, fmt.Errorf("check category %s: %w", r.Key, err)
			}
			if _, err := tx.ExecContext(ctx, upsertCategorySQL,
				r.Key, r.Path, r.NameSV, r.DescSV, r.NameEN, r.DescEN, r.Position, "", true); err != nil {
				return nil, fmt.Errorf("upsert main category %s: %w", r.Key, err)
			}
			if existed {
				result.CategoriesUpdated++
			} else {
				result.CategoriesCreated++
			}
			if !mainKeySeen[r.Key] {
				mainKeySeen[r.Key] = true
				result.MainKeys = append(result.MainKeys, r.Key)
			}

		case RowKategori:
			existed, err := categoryExists(r.Key)
			if err != nil {
				return nil, fmt.Errorf("check category %s: %w", r.Key, err)
			}
			if _, err := tx.ExecContext(ctx, upsertCategorySQL,
				r.Key, r.Path, r.NameSV, r.DescSV, r.NameEN, r.DescEN, r.Position, r.ParentKey, false); err != nil {
				return nil, fmt.Errorf("upsert category %s: %w", r.Key, err)
			}
			if existed {
				result.CategoriesUpdated++
			} else {
				result.CategoriesCreated++
			}

		case RowArtikel:
			var existed bool
			if productSeen[r.SKU] {
				existed = true
			} else {
				if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`, r.SKU).Scan(&existed); err != nil {
					return nil, fmt.Errorf("check product %s: %w", r.SKU, err)
				}
			}
			if _, err := tx.ExecContext(ctx, upsertProductSQL,
				r.SKU, r.NameSV, r.DescSV, r.NameEN, r.DescEN); err != nil {
				return nil, fmt.Errorf("upsert product %s: %w", r.SKU, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_categories (product_sku, category_key, pos_num, no_units)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (product_sku, category_key, pos_num) DO NOTHING
			`, r.SKU, r.CategoryKey, r.Position, r.NoUnits); err != nil {
				return nil, fmt.Errorf("link product %s to %s: %w", r.SKU, r.CategoryKey, err)
			}
			if existed {
				result.ProductsUpdated++
			} else {
				result.ProductsCreated++
				productSeen[r.SKU] = true
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	slog.Info("csv batch imported",
		"main_keys", result.MainKeys,
		"categories_created", result.CategoriesCreated,
		"categories_updated", result.CategoriesUpdated,
		"products_created", result.ProductsCreated,
		"products_updated", result.ProductsUpdated,
		"links_reset", result.LinksReset,
	)
	return result, nil
}
