// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export assembles the published JSON snapshots and guards them
// with a validation contract before they reach storage.
package export

import (
	"context"
	"strconv"
	"strings"

	"partspress/internal/keys"
	"partspress/internal/legacy"
	"partspress/internal/models"
	"partspress/internal/storage"
	"partspress/internal/store"
)

// ImageFinder locates the published drawing for a category and returns
// its public URL, or "" when none exists.
type ImageFinder interface {
	FindImage(ctx context.Context, key, path string) string
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".svg"}

// StoreImageFinder probes a storage area for files named after the
// category key or the lowercased leaf of its backslash path, raw and
// sanitized, across the known image extensions.
type StoreImageFinder struct {
	Images storage.Store
}

func (f *StoreImageFinder) FindImage(ctx context.Context, key, path string) string {
	var variants []string
	if key != "" {
		variants = append(variants, key, keys.SanitizeFileName(key))
	}
	if path != "" {
		parts := strings.Split(strings.TrimSpace(path), `\`)
		leaf := ""
		for i := len(parts) - 1; i >= 0; i-- {
			if parts[i] != "" {
				leaf = parts[i]
				break
			}
		}
		if leaf != "" {
			lower := strings.ToLower(leaf)
			variants = append(variants, lower, keys.SanitizeFileName(lower))
		}
	}

	seen := make(map[string]bool, len(variants))
	for _, base := range variants {
		if base == "" || seen[base] {
			continue
		}
		seen[base] = true
		for _, ext := range imageExtensions {
			name := base + ext
			ok, err := f.Images.Exists(ctx, name)
			if err != nil {
				continue
			}
			if ok {
				return f.Images.PublicURL(name)
			}
		}
	}
	return ""
}

// Image is the category drawing reference. An empty value marshals as {}.
type Image struct {
	Src string `json:"src,omitempty"`
}

// CategoryItem is one entry of a categories-<mainKey>.json file.
type CategoryItem struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Key             string         `json:"key"`
	Parent          int64          `json:"parent"`
	Description     string         `json:"description"`
	Display         string         `json:"display"`
	MenuOrder       int            `json:"menu_order"`
	Count           int            `json:"count"`
	LangName        models.LangMap `json:"lang_name"`
	LangDesc        models.LangMap `json:"lang_desc"`
	Products        []any          `json:"products"`
	CatalogImageURL string         `json:"product_catalog_image_url"`
	PosNum          string         `json:"pos_num"`
	Position        int            `json:"position"`
	Image           Image          `json:"image"`
}

// ProductCategoryRef is one category membership on a product item.
type ProductCategoryRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Key     string `json:"key"`
	PosNum  string `json:"pos_num"`
	NoUnits string `json:"no_units"`
}

// ProductItem is one entry of a products-<mainKey>.json file. Every
// distinct (sku, category, position) combination becomes its own item so
// the same part can appear at several drawing positions.
type ProductItem struct {
	ID             int64                `json:"id"`
	SKU            string               `json:"sku"`
	Name           string               `json:"name"`
	Price          string               `json:"price"`
	RegularPrice   string               `json:"regular_price"`
	SalePrice      string               `json:"sale_price"`
	LowStockAmount *int                 `json:"low_stock_amount"`
	Categories     []ProductCategoryRef `json:"categories"`
	MenuOrder      int                  `json:"menu_order"`
	HasOptions     bool                 `json:"has_options"`
	LangName       models.LangMap       `json:"lang_name"`
	LangDesc       models.LangMap       `json:"lang_desc"`
	PosNum         string               `json:"pos_num"`
	NoUnits        string               `json:"no_units"`
}

// Assembler turns stored rows into export items. It never touches the
// database itself; callers load the rows and pass them in.
type Assembler struct {
	Finder   ImageFinder
	Catalogs storage.Store
}

// FilterAllowed drops categories outside the snapshot allow-list. With no
// overrides, or an empty allow-list, everything passes.
func FilterAllowed(categories []models.Category, ov *legacy.Overrides) []models.Category {
	if ov == nil || len(ov.Allowed) == 0 {
		return categories
	}
	filtered := make([]models.Category, 0, len(categories))
	for _, cat := range categories {
		if ov.Allowed[cat.Key] {
			filtered = append(filtered, cat)
		}
	}
	return filtered
}

// CategoryItems builds export entries for an already filtered category
// list. Parent resolution prefers the snapshot parent, then the stored
// parent key, then 0. Position overrides from the snapshot win over the
// stored position.
func (a *Assembler) CategoryItems(ctx context.Context, categories []models.Category, ov *legacy.Overrides) []CategoryItem {
	idByKey := make(map[string]int64, len(categories))
	for _, cat := range categories {
		idByKey[cat.Key] = cat.ID
	}

	items := make([]CategoryItem, 0, len(categories))
	for _, cat := range categories {
		var parentID int64
		if ov != nil {
			if parentKey := ov.ParentBySlug[cat.Key]; parentKey != "" {
				parentID = idByKey[parentKey]
			}
		}
		if parentID == 0 && cat.ParentKey != "" {
			parentID = idByKey[cat.ParentKey]
		}

		imageSrc := ""
		if a.Finder != nil {
			imageSrc = a.Finder.FindImage(ctx, cat.Key, cat.Path)
		}
		catalogSrc := ""
		if cat.IsMain && cat.CatalogImage != nil && a.Catalogs != nil {
			catalogSrc = a.Catalogs.PublicURL(*cat.CatalogImage)
		}

		position := cat.Position
		posNum := ""
		if cat.Position != 0 {
			posNum = strconv.Itoa(cat.Position)
		}
		if ov != nil {
			if wpPos := ov.PositionBySlug[cat.Key]; wpPos != "" {
				posNum = wpPos
				if n, err := strconv.Atoi(wpPos); err == nil {
					position = n
				}
			}
		}

		items = append(items, CategoryItem{
			ID:              cat.ID,
			Name:            cat.Name(),
			Key:             cat.Key,
			Parent:          parentID,
			Description:     "",
			Display:         "products",
			MenuOrder:       position,
			Count:           0,
			LangName:        models.Lang(cat.NameSV, cat.NameEN, cat.NamePL),
			LangDesc:        models.Lang(cat.DescSV, cat.DescEN, cat.DescPL),
			Products:        []any{},
			CatalogImageURL: catalogSrc,
			PosNum:          posNum,
			Position:        position,
			Image:           Image{Src: imageSrc},
		})
	}
	return items
}

// ProductItems groups link rows into export entries. Rows must be ordered
// by position then SKU; grouping preserves that order. Memberships that
// point at filtered-out categories are dropped silently.
func (a *Assembler) ProductItems(parts []store.CategoryPart, categories []models.Category) []ProductItem {
	catByKey := make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		catByKey[cat.Key] = cat
	}

	index := make(map[string]int, len(parts))
	items := make([]ProductItem, 0, len(parts))
	for _, part := range parts {
		mapKey := part.SKU + "|" + part.CategoryKey + "|" + strconv.Itoa(part.PosNum)
		idx, ok := index[mapKey]
		if !ok {
			posNum := ""
			if part.PosNum != 0 {
				posNum = strconv.Itoa(part.PosNum)
			}
			price := ""
			if part.Price != nil {
				price = *part.Price
			}
			items = append(items, ProductItem{
				ID:         part.ID,
				SKU:        part.SKU,
				Name:       part.Name(),
				Price:      price,
				Categories: []ProductCategoryRef{},
				LangName:   models.Lang(part.NameSV, part.NameEN, part.NamePL),
				LangDesc:   models.Lang(part.DescSV, part.DescEN, part.DescPL),
				PosNum:     posNum,
				NoUnits:    part.NoUnits,
			})
			idx = len(items) - 1
			index[mapKey] = idx
		}
		cat, found := catByKey[part.CategoryKey]
		if !found {
			continue
		}
		refPos := "0"
		if part.PosNum != 0 {
			refPos = strconv.Itoa(part.PosNum)
		}
		items[idx].Categories = append(items[idx].Categories, ProductCategoryRef{
			ID:      cat.ID,
			Name:    cat.Name(),
			Key:     cat.Key,
			PosNum:  refPos,
			NoUnits: part.NoUnits,
		})
	}
	return items
}

// PartItem is one row of a per-category product listing, ordered by the
// included-parts bracket rule.
type PartItem struct {
	SKU      string         `json:"sku"`
	Name     string         `json:"name"`
	LangName models.LangMap `json:"lang_name"`
	LangDesc models.LangMap `json:"lang_desc"`
	PosNum   string         `json:"pos_num"`
	Price    string         `json:"price"`
	NoUnits  string         `json:"no_units"`
}

// PartItems orders one category's parts the way storefronts render them:
// positioned parts first, then the ">" begin marker, zero-position
// included parts, and the "<" end marker. Markers only appear when
// included parts exist.
func PartItems(parts []store.CategoryPart) []PartItem {
	var mains, included []store.CategoryPart
	var begin, end *store.CategoryPart
	for i, part := range parts {
		switch {
		case part.PosNum > 0:
			mains = append(mains, part)
		case part.SKU == ">":
			if begin == nil {
				begin = &parts[i]
			}
		case part.SKU == "<":
			if end == nil {
				end = &parts[i]
			}
		default:
			included = append(included, part)
		}
	}

	ordered := mains
	if len(included) > 0 {
		if begin != nil {
			ordered = append(ordered, *begin)
		}
		ordered = append(ordered, included...)
		if end != nil {
			ordered = append(ordered, *end)
		}
	}

	items := make([]PartItem, 0, len(ordered))
	for _, part := range ordered {
		price := ""
		if part.Price != nil {
			price = *part.Price
		}
		items = append(items, PartItem{
			SKU:      part.SKU,
			Name:     part.Name(),
			LangName: models.Lang(part.NameSV, part.NameEN, part.NamePL),
			LangDesc: models.Lang(part.DescSV, part.DescEN, part.DescPL),
			PosNum:   strconv.Itoa(part.PosNum),
			Price:    price,
			NoUnits:  part.NoUnits,
		})
	}
	return items
}
