// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"partspress/internal/models"
)

// ProductStore manages spare-part products and their category links.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, sku, name_sv, desc_sv, name_en, desc_en, name_pl, desc_pl, price, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.SKU, &p.NameSV, &p.DescSV, &p.NameEN, &p.DescEN,
		&p.NamePL, &p.DescPL, &p.Price, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySKU retrieves a product by SKU. Returns nil if not found.
func (s *ProductStore) FindBySKU(sku string) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by sku: %w", err)
	}
	return p, nil
}

// Search returns products matching the query in SKU, name, or description.
// An empty query returns everything up to limit.
func (s *ProductStore) Search(query string, limit int) ([]models.Product, error) {
	term := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT `+productColumns+`
		FROM products
		WHERE $1 = '' OR sku ILIKE $2 OR name_sv ILIKE $2 OR name_en ILIKE $2 OR desc_sv ILIKE $2 OR desc_en ILIKE $2
		ORDER BY sku ASC
		LIMIT $3
	`, query, term, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Upsert inserts or updates a product by SKU. Polish text and the price
// survive an upsert carrying NULL for them.
func (s *ProductStore) Upsert(p *models.Product) error {
	_, err := s.db.Exec(`
		INSERT INTO products (sku, name_sv, desc_sv, name_en, desc_en, name_pl, desc_pl, price, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (sku) DO UPDATE SET
			name_sv = excluded.name_sv,
			desc_sv = excluded.desc_sv,
			name_en = excluded.name_en,
			desc_en = excluded.desc_en,
			name_pl = COALESCE(excluded.name_pl, products.name_pl),
			desc_pl = COALESCE(excluded.desc_pl, products.desc_pl),
			price = COALESCE(excluded.price, products.price),
			updated_at = NOW()
	`, p.SKU, p.NameSV, p.DescSV, p.NameEN, p.DescEN, p.NamePL, p.DescPL, p.Price)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.SKU, err)
	}
	return nil
}

// UpdateTexts modifies the editable text fields of a product.
func (s *ProductStore) UpdateTexts(sku string, nameSV, descSV, nameEN, descEN string, namePL, descPL *string) error {
	_, err := s.db.Exec(`
		UPDATE products SET
			name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
			name_pl = COALESCE($5, name_pl), desc_pl = COALESCE($6, desc_pl),
			updated_at = NOW()
		WHERE sku = $7
	`, nameSV, descSV, nameEN, descEN, namePL, descPL, sku)
	if err != nil {
		return fmt.Errorf("update product texts %s: %w", sku, err)
	}
	return nil
}

// UpdatePrice sets the base price of a product. Used by the pricelist
// importer. Returns true when a product row was actually updated.
func (s *ProductStore) UpdatePrice(sku, price string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE products SET price = $1, updated_at = NOW() WHERE sku = $2
	`, price, sku)
	if err != nil {
		return false, fmt.Errorf("update price %s: %w", sku, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update price %s: %w", sku, err)
	}
	return n > 0, nil
}

// ProductUpdate is one item in a batch update from the admin editor.
type ProductUpdate struct {
	SKU    string `json:"sku"`
	NameSV string `json:"name_sv"`
	DescSV string `json:"desc_sv"`
	NameEN string `json:"name_en"`
	DescEN string `json:"desc_en"`
	Price  string `json:"price"`
}

// UpdateMany applies a batch of product edits in one transaction. Items
// without a SKU are skipped. Returns the number of items applied.
func (s *ProductStore) UpdateMany(items []ProductUpdate) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, item := range items {
		if item.SKU == "" {
			continue
		}
		_, err := tx.Exec(`
			UPDATE products SET
				name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
				price = $5, updated_at = NOW()
			WHERE sku = $6
		`, item.NameSV, item.DescSV, item.NameEN, item.DescEN, item.Price, item.SKU)
		if err != nil {
			return 0, fmt.Errorf("update product %s: %w", item.SKU, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit product updates: %w", err)
	}
	return updated, nil
}

// UpdateLanguage rewrites all text columns of a product, including Polish.
// Used by the translation editor which always submits every field.
func (s *ProductStore) UpdateLanguage(sku, nameSV, descSV, nameEN, descEN, namePL, descPL string) error {
	_, err := s.db.Exec(`
		UPDATE products SET
			name_sv = $1, desc_sv = $2, name_en = $3, desc_en = $4,
			name_pl = $5, desc_pl = $6, updated_at = NOW()
		WHERE sku = $7
	`, nameSV, descSV, nameEN, descEN, namePL, descPL, sku)
	if err != nil {
		return fmt.Errorf("update product language %s: %w", sku, err)
	}
	return nil
}

// SearchHit is one public search result with the first linked category.
type SearchHit struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	CategoryKey string `json:"category_key"`
}

// SearchHits runs the public catalog search, joining each product to one
// of its categories for display. Name falls back across languages based
// on lang ("sv" or "en").
func (s *ProductStore) SearchHits(query, lang string, limit int) ([]SearchHit, error) {
	term := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT p.sku, p.name_sv, p.name_en,
			COALESCE(c.key, ''), COALESCE(c.path, '')
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_sku = p.sku
		LEFT JOIN categories c ON c.key = pc.category_key
		WHERE p.sku ILIKE $1
			OR p.name_sv ILIKE $1 OR p.name_en ILIKE $1
			OR p.desc_sv ILIKE $1 OR p.desc_en ILIKE $1
		ORDER BY p.sku ASC
		LIMIT $2
	`, term, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var nameSV, nameEN string
		if err := rows.Scan(&h.SKU, &nameSV, &nameEN, &h.CategoryKey, &h.Category); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		if lang == "en" {
			h.Name = nameEN
			if h.Name == "" {
				h.Name = nameSV
			}
		} else {
			h.Name = nameSV
			if h.Name == "" {
				h.Name = nameEN
			}
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// RemoveLinksForCategory deletes every link between a product and a
// category, regardless of position.
func (s *ProductStore) RemoveLinksForCategory(sku, categoryKey string) error {
	_, err := s.db.Exec(`
		DELETE FROM product_categories
		WHERE product_sku = $1 AND category_key = $2
	`, sku, categoryKey)
	if err != nil {
		return fmt.Errorf("remove product links %s: %w", sku, err)
	}
	return nil
}

// Delete removes a product. Category links go with it via the foreign key.
func (s *ProductStore) Delete(sku string) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE sku = $1`, sku)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", sku, err)
	}
	return nil
}

// AddLink ties a product to a category at a drawing position. Duplicate
// links are ignored.
func (s *ProductStore) AddLink(link models.CategoryLink) error {
	_, err := s.db.Exec(`
		INSERT INTO product_categories (product_sku, category_key, pos_num, no_units)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_sku, category_key, pos_num) DO NOTHING
	`, link.ProductSKU, link.CategoryKey, link.PosNum, link.NoUnits)
	if err != nil {
		return fmt.Errorf("add product link %s: %w", link.ProductSKU, err)
	}
	return nil
}

// RemoveLink deletes a single product to category link.
func (s *ProductStore) RemoveLink(sku, categoryKey string, posNum int) error {
	_, err := s.db.Exec(`
		DELETE FROM product_categories
		WHERE product_sku = $1 AND category_key = $2 AND pos_num = $3
	`, sku, categoryKey, posNum)
	if err != nil {
		return fmt.Errorf("remove product link %s: %w", sku, err)
	}
	return nil
}

// LinksForSKUs returns the category keys linked to each of the given SKUs.
func (s *ProductStore) LinksForSKUs(skus []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(skus) == 0 {
		return result, nil
	}
	rows, err := s.db.Query(`
		SELECT product_sku, category_key
		FROM product_categories
		WHERE product_sku = ANY($1)
		ORDER BY category_key ASC
	`, skus)
	if err != nil {
		return nil, fmt.Errorf("list product links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku, key string
		if err := rows.Scan(&sku, &key); err != nil {
			return nil, fmt.Errorf("scan product link: %w", err)
		}
		result[sku] = append(result[sku], key)
	}
	return result, rows.Err()
}

// CategoryPart is a product row joined with its link to one category.
type CategoryPart struct {
	ID          int64
	SKU         string
	NameSV      string
	NameEN      string
	NamePL      *string
	DescSV      string
	DescEN      string
	DescPL      *string
	Price       *string
	PosNum      int
	NoUnits     string
	CategoryKey string
}

// Name returns the best display name, preferring Swedish, falling back to
// the SKU.
func (p CategoryPart) Name() string {
	if p.NameSV != "" {
		return p.NameSV
	}
	if p.NameEN != "" {
		return p.NameEN
	}
	return p.SKU
}

// PartsForCategory returns the products linked to one category ordered by
// drawing position, then SKU.
func (s *ProductStore) PartsForCategory(categoryKey string) ([]CategoryPart, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.sku, p.name_sv, p.name_en, p.name_pl, p.desc_sv, p.desc_en, p.desc_pl,
		       p.price, pc.pos_num, pc.no_units, pc.category_key
		FROM products p
		JOIN product_categories pc ON pc.product_sku = p.sku
		WHERE pc.category_key = $1
		ORDER BY pc.pos_num ASC, p.sku ASC
	`, categoryKey)
	if err != nil {
		return nil, fmt.Errorf("parts for category %s: %w", categoryKey, err)
	}
	return scanParts(rows)
}

// PartsForTree returns every product link under a main key, ordered by
// drawing position, then SKU. The same SKU can appear once per category
// and position.
func (s *ProductStore) PartsForTree(mainKey string) ([]CategoryPart, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.sku, p.name_sv, p.name_en, p.name_pl, p.desc_sv, p.desc_en, p.desc_pl,
		       p.price, pc.pos_num, pc.no_units, pc.category_key
		FROM products p
		JOIN product_categories pc ON pc.product_sku = p.sku
		WHERE pc.category_key = $1 OR pc.category_key LIKE $2
		ORDER BY pc.pos_num ASC, p.sku ASC
	`, mainKey, mainKey+"-%")
	if err != nil {
		return nil, fmt.Errorf("parts for tree %s: %w", mainKey, err)
	}
	return scanParts(rows)
}

func scanParts(rows *sql.Rows) ([]CategoryPart, error) {
	defer rows.Close()
	var items []CategoryPart
	for rows.Next() {
		var p CategoryPart
		err := rows.Scan(
			&p.ID, &p.SKU, &p.NameSV, &p.NameEN, &p.NamePL, &p.DescSV, &p.DescEN, &p.DescPL,
			&p.Price, &p.PosNum, &p.NoUnits, &p.CategoryKey,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category part: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Count returns the number of products for the status endpoint.
func (s *ProductStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
