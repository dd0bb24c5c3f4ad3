// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category represents a spare-part category imported from a
// backslash-separated catalog path. The key is the canonical form of the
// path and doubles as the public identifier.
type Category struct {
	ID           int64     `json:"id"`
	Key          string    `json:"key"`
	Path         string    `json:"path"`
	NameSV       string    `json:"name_sv"`
	DescSV       string    `json:"desc_sv"`
	NameEN       string    `json:"name_en"`
	DescEN       string    `json:"desc_en"`
	NamePL       *string   `json:"name_pl"`
	DescPL       *string   `json:"desc_pl"`
	Position     int       `json:"position"`
	ParentKey    string    `json:"parent_key"`
	IsMain       bool      `json:"is_main"`
	CatalogImage *string   `json:"catalog_image"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Name returns the best display name, preferring Swedish.
func (c *Category) Name() string {
	if c.NameSV != "" {
		return c.NameSV
	}
	if c.NameEN != "" {
		return c.NameEN
	}
	return c.Key
}

// CategoryChild is one entry in a labelled child listing. DisplayLabel is
// what the UI shows; it falls back to a sibling ordinal when position
// labels collide within the listing.
type CategoryChild struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	NameSV       string `json:"name_sv"`
	NameEN       string `json:"name_en"`
	Position     int    `json:"position"`
	PosLabel     string `json:"pos_label"`
	DisplayLabel string `json:"display_label"`
}
