package legacy

import (
	"fmt"
	"strings"
)

// CappedList reports a count alongside a bounded sample, keeping
// validation responses small for large snapshots.
type CappedList struct {
	Total int      `json:"total"`
	Items []string `json:"items"`
}

// Cap builds a CappedList keeping at most max entries.
func Cap(items []string, max int) CappedList {
	out := CappedList{Total: len(items), Items: items}
	if len(items) > max {
		out.Items = items[:max]
	}
	if out.Items == nil {
		out.Items = []string{}
	}
	return out
}

// ValidationReport summarizes a snapshot check before import.
type ValidationReport struct {
	OK      bool   `json:"ok"`
	MainKey string `json:"mainKey"`
	Counts  struct {
		Categories          int `json:"categories"`
		Products            int `json:"products"`
		MissingProductRefs  int `json:"missingProductRefs"`
		MissingCategoryRefs int `json:"missingCategoryRefs"`
	} `json:"counts"`
	Errors     CappedList `json:"errors"`
	Warnings   CappedList `json:"warnings"`
	Duplicates struct {
		Slugs CappedList `json:"slugs"`
		SKUs  CappedList `json:"skus"`
	} `json:"duplicates"`
}

// Validate checks snapshot integrity: required identifiers, duplicate
// slugs and SKUs, and dangling cross references. Errors block the import;
// warnings do not.
func Validate(snap *Snapshot) ValidationReport {
	var report ValidationReport
	report.MainKey = snap.MainKey

	var errs, warnings []string
	catByID := make(map[int64]bool)
	catBySlug := make(map[string]bool)
	prodByID := make(map[int64]bool)
	prodBySKU := make(map[string]bool)
	var dupSlugs, dupSKUs []string
	dupSlugSeen := make(map[string]bool)
	dupSKUSeen := make(map[string]bool)

	for i, cat := range snap.Categories {
		rowNum := i + 1
		if cat.ID == 0 {
			warnings = append(warnings, fmt.Sprintf("Category row %d: missing id.", rowNum))
		} else {
			catByID[cat.ID] = true
		}
		slug := cat.EffectiveSlug()
		if slug == "" {
			errs = append(errs, fmt.Sprintf("Category row %d: missing slug/key.", rowNum))
			continue
		}
		if catBySlug[slug] {
			if !dupSlugSeen[slug] {
				dupSlugSeen[slug] = true
				dupSlugs = append(dupSlugs, slug)
			}
		} else {
			catBySlug[slug] = true
		}
	}

	for i, prod := range snap.Products {
		rowNum := i + 1
		if prod.ID == 0 {
			warnings = append(warnings, fmt.Sprintf("Product row %d: missing id.", rowNum))
		} else {
			prodByID[prod.ID] = true
		}
		sku := strings.TrimSpace(prod.SKU)
		if sku == "" {
			errs = append(errs, fmt.Sprintf("Product row %d: missing sku.", rowNum))
			continue
		}
		if prodBySKU[sku] {
			if !dupSKUSeen[sku] {
				dupSKUSeen[sku] = true
				dupSKUs = append(dupSKUs, sku)
			}
		} else {
			prodBySKU[sku] = true
		}
	}

	missingProductRefs := 0
	for _, cat := range snap.Categories {
		for _, ref := range cat.Products {
			id := ref.ProductID
			if id == 0 {
				id = ref.ID
			}
			if id == 0 || !prodByID[id] {
				missingProductRefs++
			}
		}
	}

	missingCategoryRefs := 0
	for _, prod := range snap.Products {
		for _, ref := range prod.Categories {
			slug := strings.TrimSpace(ref.Slug)
			if slug == "" || !catBySlug[slug] {
				missingCategoryRefs++
			}
		}
	}

	if len(dupSlugs) > 0 {
		sample := dupSlugs
		if len(sample) > 10 {
			sample = sample[:10]
		}
		warnings = append(warnings, "Duplicate category slugs detected: "+strings.Join(sample, ", "))
	}
	if len(dupSKUs) > 0 {
		sample := dupSKUs
		if len(sample) > 10 {
			sample = sample[:10]
		}
		warnings = append(warnings, "Duplicate product SKUs detected: "+strings.Join(sample, ", "))
	}

	report.OK = len(errs) == 0
	report.Counts.Categories = len(snap.Categories)
	report.Counts.Products = len(snap.Products)
	report.Counts.MissingProductRefs = missingProductRefs
	report.Counts.MissingCategoryRefs = missingCategoryRefs
	report.Errors = Cap(errs, 50)
	report.Warnings = Cap(warnings, 50)
	report.Duplicates.Slugs = Cap(dupSlugs, 50)
	report.Duplicates.SKUs = Cap(dupSKUs, 50)
	return report
}
