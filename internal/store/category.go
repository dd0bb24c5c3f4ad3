// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"partspress/internal/keys"
	"partspress/internal/models"
)

// CategoryStore manages spare-part categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, key, path, name_sv, desc_sv, name_en, desc_en, name_pl, desc_pl, position, parent_key, is_main, catalog_image, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Key, &c.Path, &c.NameSV, &c.DescSV, &c.NameEN, &c.DescEN,
		&c.NamePL, &c.DescPL, &c.Position, &c.ParentKey, &c.IsMain,
		&c.CatalogImage, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) scanAll(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()
	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByKey retrieves a category by its canonical key. Returns nil if not found.
func (s *CategoryStore) FindByKey(key string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE key = $1`, key)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by key: %w", err)
	}
	return c, nil
}

// Search returns categories matching the query in key, path, or any name
// column. An empty query returns everything up to limit.
func (s *CategoryStore) Search(query string, limit int) ([]models.Category, error) {
	term := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM categories
		WHERE $1 = '' OR key ILIKE $2 OR path ILIKE $2 OR name_sv ILIKE $2 OR name_en ILIKE $2
		ORDER BY id ASC
		LIMIT $3
	`, query, term, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	return s.scanAll(rows)
}

// ListMain returns the main catalog categories in display order.
func (s *CategoryStore) ListMain() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_main = TRUE
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list main categories: %w", err)
	}
	return s.scanAll(rows)
}

// ListTree returns a main category and all of its descendants by key
// prefix, in display order.
func (s *CategoryStore) ListTree(mainKey string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM categories
		WHERE key = $1 OR key LIKE $2
		ORDER BY position ASC, id ASC
	`, mainKey, mainKey+"-%")
	if err != nil {
		return nil, fmt.Errorf("list category tree: %w", err)
	}
	return s.scanAll(rows)
}

// ListAround returns the categories that belong to a main key by key,
// parent, key prefix, or path prefix. Used by the image map editor which
// must also see children whose keys do not share the main prefix.
func (s *CategoryStore) ListAround(mainKey string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM categories
		WHERE key = $1 OR parent_key = $1 OR key LIKE $2 OR path LIKE $3
		ORDER BY position ASC, id ASC
	`, mainKey, mainKey+"-%", mainKey+"%")
	if err != nil {
		return nil, fmt.Errorf("list categories around: %w", err)
	}
	return s.scanAll(rows)
}

// Upsert inserts or updates a category by key. Polish text and the catalog
// image survive an upsert carrying NULL for them, so a catalog re-import
// does not wipe translations entered by hand.
func (s *CategoryStore) Upsert(c *models.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (key, path, name_sv, desc_sv, name_en, desc_en, name_pl, desc_pl, position, parent_key, is_main, catalog_image, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (key) DO UPDATE SET
			path = excluded.path,
			name_sv = excluded.name_sv,
			desc_sv = excluded.desc_sv,
			name_en = excluded.name_en,
			desc_en = excluded.desc_en,
			name_pl = COALESCE(excluded.name_pl, categories.name_pl),
			desc_pl = COALESCE(excluded.desc_pl, categories.desc_pl),
			position = excluded.position,
			parent_key = excluded.parent_key,
			is_main = excluded.is_main,
			catalog_image = COALESCE(excluded.catalog_image, categories.catalog_image),
			updated_at = NOW()
	`, c.Key, c.Path, c.NameSV, c.DescSV, c.NameEN, c.DescEN, c.NamePL, c.DescPL,
		c.Position, c.ParentKey, c.IsMain, c.CatalogImage)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.Key, err)
	}
	return nil
}

// UpdateTexts modifies the editable text fields of a category.
func (s *CategoryStore) UpdateTexts(key string, nameSV, descSV, nameEN, descEN string, namePL, descPL *string) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
			name_pl = COALESCE($5, name_pl), desc_pl = COALESCE($6, desc_pl),
			updated_at = NOW()
		WHERE key = $7
	`, nameSV, descSV, nameEN, descEN, namePL, descPL, key)
	if err != nil {
		return fmt.Errorf("update category texts %s: %w", key, err)
	}
	return nil
}

// UpdateParentKey rewrites the stored parent of a category.
func (s *CategoryStore) UpdateParentKey(key, parentKey string) error {
	_, err := s.db.Exec(`
		UPDATE categories SET parent_key = $1, updated_at = NOW() WHERE key = $2
	`, parentKey, key)
	if err != nil {
		return fmt.Errorf("update parent key %s: %w", key, err)
	}
	return nil
}

// SetCatalogImage stores the catalog image file name for a main category.
// Pass nil to clear it.
func (s *CategoryStore) SetCatalogImage(key string, fileName *string) error {
	_, err := s.db.Exec(`
		UPDATE categories SET catalog_image = $1, updated_at = NOW() WHERE key = $2
	`, fileName, key)
	if err != nil {
		return fmt.Errorf("set catalog image %s: %w", key, err)
	}
	return nil
}

// CategoryUpdate is one item in a batch update from the admin editor.
type CategoryUpdate struct {
	Key      string `json:"key"`
	NameSV   string `json:"name_sv"`
	DescSV   string `json:"desc_sv"`
	NameEN   string `json:"name_en"`
	DescEN   string `json:"desc_en"`
	Position int    `json:"position"`
	IsMain   bool   `json:"is_main"`
}

// UpdateMany applies a batch of category edits in one transaction.
// Items without a key are skipped. Returns the number of items applied.
func (s *CategoryStore) UpdateMany(items []CategoryUpdate) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, item := range items {
		if item.Key == "" {
			continue
		}
		_, err := tx.Exec(`
			UPDATE categories SET
				name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
				position = $5, is_main = $6, updated_at = NOW()
			WHERE key = $7
		`, item.NameSV, item.DescSV, item.NameEN, item.DescEN,
			item.Position, item.IsMain, item.Key)
		if err != nil {
			return 0, fmt.Errorf("update category %s: %w", item.Key, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit category updates: %w", err)
	}
	return updated, nil
}

// UpdateLanguage rewrites all text columns of a category by id, including
// Polish. Used by the translation editor which always submits every field.
func (s *CategoryStore) UpdateLanguage(id int64, nameSV, descSV, nameEN, descEN, namePL, descPL string) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
			name_pl = $5, desc_pl = $6, updated_at = NOW()
		WHERE id = $7
	`, nameSV, descSV, nameEN, descEN, namePL, descPL, id)
	if err != nil {
		return fmt.Errorf("update category language %d: %w", id, err)
	}
	return nil
}

// HasChildrenOrLinks reports whether a category has child categories or
// linked products. Guards the non-cascading delete.
func (s *CategoryStore) HasChildrenOrLinks(key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM categories WHERE parent_key = $1)
			OR EXISTS (SELECT 1 FROM product_categories WHERE category_key = $1)
	`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category children %s: %w", key, err)
	}
	return exists, nil
}

// DeleteTree removes a category and every descendant sharing its key
// prefix, along with their product links and image maps. Returns the
// number of categories deleted.
func (s *CategoryStore) DeleteTree(key string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT key FROM categories WHERE key = $1 OR key LIKE $2`, key, key+"-%")
	if err != nil {
		return 0, fmt.Errorf("list category tree %s: %w", key, err)
	}
	var targets []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan category key: %w", err)
		}
		targets = append(targets, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, tx.Commit()
	}

	if _, err := tx.Exec(`DELETE FROM product_categories WHERE category_key = ANY($1)`, targets); err != nil {
		return 0, fmt.Errorf("delete tree links %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM image_maps WHERE category_key = ANY($1)`, targets); err != nil {
		return 0, fmt.Errorf("delete tree image maps %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE key = ANY($1)`, targets); err != nil {
		return 0, fmt.Errorf("delete tree %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tree delete: %w", err)
	}
	return len(targets), nil
}

// Delete removes a category and its product links and image map.
func (s *CategoryStore) Delete(key string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_categories WHERE category_key = $1`, key); err != nil {
		return fmt.Errorf("delete category links %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM image_maps WHERE category_key = $1`, key); err != nil {
		return fmt.Errorf("delete category image map %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete category %s: %w", key, err)
	}

	return tx.Commit()
}

// ChildrenWithLabels returns the direct children of a category in display
// order. Position labels come from the drawing position plus an optional
// letter suffix taken from the child's name. When two children end up with
// the same label, every child falls back to its 1-based ordinal so the
// listing stays unambiguous.
func (s *CategoryStore) ChildrenWithLabels(parentKey string) ([]models.CategoryChild, error) {
	rows, err := s.db.Query(`
		SELECT key, name_sv, name_en, position
		FROM categories
		WHERE parent_key = $1
		ORDER BY position ASC, id ASC
	`, parentKey)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	defer rows.Close()

	var children []models.CategoryChild
	for rows.Next() {
		var c models.CategoryChild
		if err := rows.Scan(&c.Key, &c.NameSV, &c.NameEN, &c.Position); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		c.Name = c.NameSV
		if c.Name == "" {
			c.Name = c.NameEN
		}
		if c.Name == "" {
			c.Name = c.Key
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	for i := range children {
		pos := ""
		if children[i].Position != 0 {
			pos = strconv.Itoa(children[i].Position)
		}
		children[i].PosLabel = keys.PosLabel(pos, children[i].Name)
		seen[children[i].PosLabel]++
	}
	hasDuplicates := false
	for _, n := range seen {
		if n > 1 {
			hasDuplicates = true
			break
		}
	}
	for i := range children {
		if hasDuplicates {
			children[i].DisplayLabel = strconv.Itoa(i + 1)
		} else {
			children[i].DisplayLabel = children[i].PosLabel
		}
	}
	return children, nil
}

// Counts returns total and main category counts for the status endpoint.
func (s *CategoryStore) Counts() (total, main int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count categories: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE is_main = TRUE`).Scan(&main); err != nil {
		return 0, 0, fmt.Errorf("count main categories: %w", err)
	}
	return total, main, nil
}

// clampLimit bounds a listing limit to a sane range.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
