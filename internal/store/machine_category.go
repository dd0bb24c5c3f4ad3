// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"partspress/internal/models"
)

// MachineCategoryStore manages the machine navigation tree.
type MachineCategoryStore struct {
	db *sql.DB
}

// NewMachineCategoryStore returns a new MachineCategoryStore.
func NewMachineCategoryStore(db *sql.DB) *MachineCategoryStore {
	return &MachineCategoryStore{db: db}
}

// Search returns machine categories matching the query, each with its
// product category links loaded.
func (s *MachineCategoryStore) Search(query string, limit int) ([]models.MachineCategory, error) {
	term := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, key, parent_id, position, name_sv, name_en, created_at, updated_at
		FROM machine_categories
		WHERE $1 = '' OR key ILIKE $2 OR name_sv ILIKE $2 OR name_en ILIKE $2
		ORDER BY position ASC, id ASC
		LIMIT $3
	`, query, term, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search machine categories: %w", err)
	}
	defer rows.Close()

	var items []models.MachineCategory
	var ids []int64
	for rows.Next() {
		var m models.MachineCategory
		if err := rows.Scan(&m.ID, &m.Key, &m.ParentID, &m.Position, &m.NameSV, &m.NameEN, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan machine category: %w", err)
		}
		items = append(items, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.links(ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ProductCategories = links[items[i].ID]
	}
	return items, nil
}

// FindByKey retrieves a machine category by key. Returns nil if not found.
func (s *MachineCategoryStore) FindByKey(key string) (*models.MachineCategory, error) {
	var m models.MachineCategory
	err := s.db.QueryRow(`
		SELECT id, key, parent_id, position, name_sv, name_en, created_at, updated_at
		FROM machine_categories WHERE key = $1
	`, key).Scan(&m.ID, &m.Key, &m.ParentID, &m.Position, &m.NameSV, &m.NameEN, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find machine category by key: %w", err)
	}
	return &m, nil
}

// Create inserts a new machine category.
func (s *MachineCategoryStore) Create(key, nameSV, nameEN string, position int, parentID *int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO machine_categories (key, name_sv, name_en, position, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, key, nameSV, nameEN, position, parentID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create machine category %s: %w", key, err)
	}
	return id, nil
}

// UpdateItem is one entry in a bulk machine category update.
type UpdateItem struct {
	ID       int64  `json:"id"`
	NameSV   string `json:"name_sv"`
	NameEN   string `json:"name_en"`
	Position int    `json:"position"`
	ParentID *int64 `json:"parent_id"`
}

// UpdateMany modifies name, position, and parent for multiple machine
// categories in one transaction. Returns the number of rows touched.
func (s *MachineCategoryStore) UpdateMany(items []UpdateItem) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE machine_categories
		SET name_sv = $1, name_en = $2, position = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5`)
	if err != nil {
		return 0, fmt.Errorf("prepare machine category update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		if _, err := stmt.Exec(item.NameSV, item.NameEN, item.Position, item.ParentID, item.ID); err != nil {
			return 0, fmt.Errorf("update machine category %d: %w", item.ID, err)
		}
		updated++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}

// HasChildrenOrLinks reports whether a machine category has child nodes or
// product category links. Used to guard non-cascading deletes.
func (s *MachineCategoryStore) HasChildrenOrLinks(id int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM machine_categories WHERE parent_id = $1) +
			(SELECT COUNT(*) FROM machine_category_product_categories WHERE machine_category_id = $1)
	`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check machine category children: %w", err)
	}
	return n > 0, nil
}

// Delete removes a machine category. With cascade, direct children and all
// their links go too. Returns the number of categories removed.
func (s *MachineCategoryStore) Delete(id int64, cascade bool) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := []int64{id}
	if cascade {
		rows, err := tx.Query(`SELECT id FROM machine_categories WHERE parent_id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("list machine category children: %w", err)
		}
		for rows.Next() {
			var childID int64
			if err := rows.Scan(&childID); err != nil {
				rows.Close()
				return 0, fmt.Errorf("scan machine category child: %w", err)
			}
			ids = append(ids, childID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, err
		}
	}

	if _, err := tx.Exec(`DELETE FROM machine_category_product_categories WHERE machine_category_id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("delete machine category links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM machine_categories WHERE id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("delete machine categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// LinkItem is one product category link in a replace request.
type LinkItem struct {
	CategoryKey string   `json:"category_key"`
	Position    *int     `json:"position"`
	ShowForLang []string `json:"showForLang"`
}

// ReplaceLinks swaps the product category links of a machine category.
func (s *MachineCategoryStore) ReplaceLinks(id int64, links []LinkItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM machine_category_product_categories WHERE machine_category_id = $1`, id); err != nil {
		return fmt.Errorf("clear machine category links: %w", err)
	}
	for _, link := range links {
		if link.CategoryKey == "" {
			continue
		}
		var showFor *string
		if len(link.ShowForLang) > 0 {
			joined := ""
			for i, lang := range link.ShowForLang {
				if i > 0 {
					joined += ","
				}
				joined += lang
			}
			showFor = &joined
		}
		_, err := tx.Exec(`
			INSERT INTO machine_category_product_categories (machine_category_id, category_key, position, show_for_lang)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (machine_category_id, category_key) DO UPDATE SET
				position = excluded.position,
				show_for_lang = excluded.show_for_lang
		`, id, link.CategoryKey, link.Position, showFor)
		if err != nil {
			return fmt.Errorf("insert machine category link %s: %w", link.CategoryKey, err)
		}
	}
	return tx.Commit()
}

// UpsertLink adds or repositions a single product category link.
func (s *MachineCategoryStore) UpsertLink(id int64, categoryKey string, position int) error {
	_, err := s.db.Exec(`
		INSERT INTO machine_category_product_categories (machine_category_id, category_key, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (machine_category_id, category_key) DO UPDATE SET
			position = excluded.position
	`, id, categoryKey, position)
	if err != nil {
		return fmt.Errorf("upsert machine category link %s: %w", categoryKey, err)
	}
	return nil
}

// RemoveLink deletes a single product category link.
func (s *MachineCategoryStore) RemoveLink(id int64, categoryKey string) error {
	_, err := s.db.Exec(`
		DELETE FROM machine_category_product_categories
		WHERE machine_category_id = $1 AND category_key = $2
	`, id, categoryKey)
	if err != nil {
		return fmt.Errorf("remove machine category link %s: %w", categoryKey, err)
	}
	return nil
}

// links loads product category links for a set of machine categories,
// joined with the linked categories' display data.
func (s *MachineCategoryStore) links(ids []int64) (map[int64][]models.MachineCategoryLink, error) {
	result := make(map[int64][]models.MachineCategoryLink)
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := s.db.Query(`
		SELECT l.machine_category_id, l.category_key, l.position, l.show_for_lang,
		       c.id, c.name_sv, c.name_en, c.name_pl, c.desc_sv, c.desc_en, c.desc_pl,
		       c.catalog_image, c.position
		FROM machine_category_product_categories l
		LEFT JOIN categories c ON c.key = l.category_key
		WHERE l.machine_category_id = ANY($1)
		ORDER BY l.position ASC NULLS LAST, l.id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list machine category links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			machineID    int64
			key          string
			linkPos      sql.NullInt64
			showForLang  sql.NullString
			catID        sql.NullInt64
			nameSV       sql.NullString
			nameEN       sql.NullString
			namePL       sql.NullString
			descSV       sql.NullString
			descEN       sql.NullString
			descPL       sql.NullString
			catalogImage sql.NullString
			catPos       sql.NullInt64
		)
		err := rows.Scan(&machineID, &key, &linkPos, &showForLang,
			&catID, &nameSV, &nameEN, &namePL, &descSV, &descEN, &descPL,
			&catalogImage, &catPos)
		if err != nil {
			return nil, fmt.Errorf("scan machine category link: %w", err)
		}

		link := models.MachineCategoryLink{
			ID:   catID.Int64,
			Key:  key,
			Slug: key,
			LangName: models.LangMap{
				SE: nameSV.String,
				EN: nameEN.String,
				PL: namePL.String,
			},
			LangDesc: models.LangMap{
				SE: descSV.String,
				EN: descEN.String,
				PL: descPL.String,
			},
			CatalogImage: catalogImage.String,
			ShowForLang:  models.ParseLangList(showForLang.String),
		}
		link.Name = link.LangName.SE
		if link.Name == "" {
			link.Name = link.LangName.EN
		}
		if link.Name == "" {
			link.Name = key
		}
		switch {
		case linkPos.Valid:
			link.Position = strconv.FormatInt(linkPos.Int64, 10)
		case catPos.Valid && catPos.Int64 != 0:
			link.Position = strconv.FormatInt(catPos.Int64, 10)
		default:
			link.Position = "0"
		}

		result[machineID] = append(result[machineID], link)
	}
	return result, rows.Err()
}

// Hierarchy returns the published machine tree. Roots with children keep
// only the child list and drop their own product category links; leaves
// keep the links and drop the empty child list.
func (s *MachineCategoryStore) Hierarchy() ([]models.MachineNode, error) {
	rows, err := s.db.Query(`
		SELECT id, key, parent_id, position, name_sv, name_en
		FROM machine_categories
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list machine hierarchy: %w", err)
	}
	defer rows.Close()

	type flatRow struct {
		node     models.MachineNode
		parentID int64
	}
	var flat []flatRow
	var ids []int64
	for rows.Next() {
		var (
			id       int64
			key      string
			parentID sql.NullInt64
			position int
			nameSV   string
			nameEN   string
		)
		if err := rows.Scan(&id, &key, &parentID, &position, &nameSV, &nameEN); err != nil {
			return nil, fmt.Errorf("scan machine hierarchy row: %w", err)
		}
		name := nameSV
		if name == "" {
			name = nameEN
		}
		if name == "" {
			name = key
		}
		menuOrder := "0"
		if position != 0 {
			menuOrder = strconv.Itoa(position)
		}
		flat = append(flat, flatRow{
			node: models.MachineNode{
				ID:        id,
				Name:      name,
				LangName:  models.LangMap{SE: nameSV, EN: nameEN},
				Key:       key,
				Slug:      key,
				Parent:    parentID.Int64,
				Taxonomy:  "machine_category",
				MenuOrder: menuOrder,
			},
			parentID: parentID.Int64,
		})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return []models.MachineNode{}, nil
	}

	links, err := s.links(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]int, len(flat))
	for i, row := range flat {
		byID[row.node.ID] = i
		flat[i].node.ProductCategories = links[row.node.ID]
	}

	var rootIdx []int
	for i := range flat {
		if flat[i].parentID != 0 {
			if pi, ok := byID[flat[i].parentID]; ok {
				flat[pi].node.Children = append(flat[pi].node.Children, flat[i].node)
				continue
			}
		}
		rootIdx = append(rootIdx, i)
	}

	roots := make([]models.MachineNode, 0, len(rootIdx))
	for _, i := range rootIdx {
		roots = append(roots, flat[i].node)
	}

	for i := range roots {
		if len(roots[i].Children) == 0 {
			roots[i].IsParentCategory = false
			continue
		}
		roots[i].IsParentCategory = true
		roots[i].ProductCategories = nil
		for j := range roots[i].Children {
			roots[i].Children[j].IsParentCategory = false
			roots[i].Children[j].Children = nil
		}
	}
	return roots, nil
}
