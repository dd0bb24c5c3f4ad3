package store

import (
	"database/sql"
	"fmt"
	"regexp"

	"partspress/internal/models"
)

// ImageMapStore manages clickable drawing overlays per category.
type ImageMapStore struct {
	db *sql.DB
}

// NewImageMapStore returns a new ImageMapStore.
func NewImageMapStore(db *sql.DB) *ImageMapStore {
	return &ImageMapStore{db: db}
}

// Find retrieves the image map for a category. Returns nil if not found.
func (s *ImageMapStore) Find(categoryKey string) (*models.ImageMap, error) {
	var m models.ImageMap
	err := s.db.QueryRow(`
		SELECT id, category_key, html, updated_at FROM image_maps WHERE category_key = $1
	`, categoryKey).Scan(&m.ID, &m.CategoryKey, &m.HTML, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image map %s: %w", categoryKey, err)
	}
	return &m, nil
}

// FindMany retrieves image maps for a set of category keys.
func (s *ImageMapStore) FindMany(categoryKeys []string) (map[string]models.ImageMap, error) {
	result := make(map[string]models.ImageMap)
	if len(categoryKeys) == 0 {
		return result, nil
	}
	rows, err := s.db.Query(`
		SELECT id, category_key, html, updated_at FROM image_maps WHERE category_key = ANY($1)
	`, categoryKeys)
	if err != nil {
		return nil, fmt.Errorf("find image maps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.ImageMap
		if err := rows.Scan(&m.ID, &m.CategoryKey, &m.HTML, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan image map: %w", err)
		}
		result[m.CategoryKey] = m
	}
	return result, rows.Err()
}

// Upsert stores the overlay markup for a category.
func (s *ImageMapStore) Upsert(categoryKey, html string) error {
	_, err := s.db.Exec(`
		INSERT INTO image_maps (category_key, html, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (category_key) DO UPDATE SET html = excluded.html, updated_at = NOW()
	`, categoryKey, html)
	if err != nil {
		return fmt.Errorf("upsert image map %s: %w", categoryKey, err)
	}
	return nil
}

// Delete removes the overlay for a category.
func (s *ImageMapStore) Delete(categoryKey string) error {
	_, err := s.db.Exec(`DELETE FROM image_maps WHERE category_key = $1`, categoryKey)
	if err != nil {
		return fmt.Errorf("delete image map %s: %w", categoryKey, err)
	}
	return nil
}

var areaTag = regexp.MustCompile(`(?i)<area\b`)

// HasHotspots reports whether overlay markup contains at least one
// clickable area.
func HasHotspots(html string) bool {
	return html != "" && areaTag.MatchString(html)
}
