// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Product represents a spare part identified by SKU. A product can appear
// in many categories at different drawing positions via CategoryLink.
type Product struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	NameSV    string    `json:"name_sv"`
	DescSV    string    `json:"desc_sv"`
	NameEN    string    `json:"name_en"`
	DescEN    string    `json:"desc_en"`
	NamePL    *string   `json:"name_pl"`
	DescPL    *string   `json:"desc_pl"`
	Price     *string   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Name returns the best display name, preferring Swedish, falling back to
// the SKU.
func (p *Product) Name() string {
	if p.NameSV != "" {
		return p.NameSV
	}
	if p.NameEN != "" {
		return p.NameEN
	}
	return p.SKU
}

// CategoryLink ties a product to a category at a drawing position.
// PosNum 0 marks an included part rather than a numbered position, and the
// sentinel SKUs ">" and "<" at position 0 delimit the included-parts block.
type CategoryLink struct {
	ID          int64  `json:"id"`
	ProductSKU  string `json:"product_sku"`
	CategoryKey string `json:"category_key"`
	PosNum      int    `json:"pos_num"`
	NoUnits     string `json:"no_units"`
}
