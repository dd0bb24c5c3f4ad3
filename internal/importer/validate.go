package importer

import (
	"fmt"
	"strings"

	"partspress/internal/keys"
	"partspress/internal/legacy"
)

var allowedRowTypes = map[string]bool{
	"produkt":  true,
	"kategori": true,
	"artikel":  true,
}

// Report summarizes a CSV batch check. Any error rejects the whole
// batch; duplicates only warn.
type Report struct {
	OK     bool `json:"ok"`
	Counts struct {
		Rows                int `json:"rows"`
		Produkt             int `json:"produkt"`
		Kategori            int `json:"kategori"`
		Artikel             int `json:"artikel"`
		MissingType         int `json:"missingType"`
		InvalidType         int `json:"invalidType"`
		MissingCategoryPath int `json:"missingCategoryPath"`
		MissingSKU          int `json:"missingSku"`
	} `json:"counts"`
	Errors     legacy.CappedList `json:"errors"`
	Warnings   legacy.CappedList `json:"warnings"`
	Duplicates struct {
		SKUs       legacy.CappedList `json:"skus"`
		Categories legacy.CappedList `json:"categories"`
	} `json:"duplicates"`
}

// ValidateRows checks an import batch before anything touches the
// database.
func ValidateRows(records []Record) Report {
	var report Report
	report.Counts.Rows = len(records)

	var errs, warnings []string
	skuSeen := make(map[string]bool)
	categorySeen := make(map[string]bool)
	var dupSKUs, dupCategories []string
	dupSKUSeen := make(map[string]bool)
	dupCategorySeen := make(map[string]bool)

	for i, record := range records {
		rowNum := i + 1
		rowType := strings.ToLower(record.Get("type"))
		if rowType == "" {
			report.Counts.MissingType++
			errs = append(errs, fmt.Sprintf("Row %d: missing type.", rowNum))
			continue
		}
		if !allowedRowTypes[rowType] {
			report.Counts.InvalidType++
			errs = append(errs, fmt.Sprintf("Row %d: invalid type %q.", rowNum, rowType))
			continue
		}
		switch rowType {
		case "produkt":
			report.Counts.Produkt++
		case "kategori":
			report.Counts.Kategori++
		case "artikel":
			report.Counts.Artikel++
		}

		path := record.Get("category_path")
		if path == "" {
			report.Counts.MissingCategoryPath++
			errs = append(errs, fmt.Sprintf("Row %d: missing category_path for %s.", rowNum, rowType))
			continue
		}
		key := keys.Canonical(path)
		if key == "" {
			errs = append(errs, fmt.Sprintf("Row %d: invalid category_path %q.", rowNum, path))
			continue
		}

		if rowType == "artikel" {
			sku := record.Get("artikel_id")
			if sku == "" {
				report.Counts.MissingSKU++
				errs = append(errs, fmt.Sprintf("Row %d: missing artikel_id for artikel.", rowNum))
				continue
			}
			if skuSeen[sku] {
				if !dupSKUSeen[sku] {
					dupSKUSeen[sku] = true
					dupSKUs = append(dupSKUs, sku)
				}
			} else {
				skuSeen[sku] = true
			}
			continue
		}

		if categorySeen[key] {
			if !dupCategorySeen[key] {
				dupCategorySeen[key] = true
				dupCategories = append(dupCategories, key)
			}
		} else {
			categorySeen[key] = true
		}
	}

	if len(dupSKUs) > 0 {
		sample := dupSKUs
		if len(sample) > 10 {
			sample = sample[:10]
		}
		warnings = append(warnings, "Duplicate SKUs found: "+strings.Join(sample, ", "))
	}
	if len(dupCategories) > 0 {
		sample := dupCategories
		if len(sample) > 10 {
			sample = sample[:10]
		}
		warnings = append(warnings, "Duplicate category keys found: "+strings.Join(sample, ", "))
	}

	report.OK = len(errs) == 0
	report.Errors = legacy.Cap(errs, 50)
	report.Warnings = legacy.Cap(warnings, 50)
	report.Duplicates.SKUs = legacy.Cap(dupSKUs, 50)
	report.Duplicates.Categories = legacy.Cap(dupCategories, 50)
	return report
}
