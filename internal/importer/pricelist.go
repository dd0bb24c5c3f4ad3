package importer

import (
	"fmt"
	"log/slog"
	"strings"

	"partspress/internal/store"
)

// PricelistResult counts a price list run. SKUs absent from the catalog
// are counted, never created.
type PricelistResult struct {
	Updated int `json:"updated"`
	Missing int `json:"missing"`
}

// ApplyPricelist updates product prices from a price list export. The
// file carries artikelkod and grundpris columns; Swedish decimal commas
// are converted to dots.
func ApplyPricelist(records []Record, products *store.ProductStore) (*PricelistResult, error) {
	result := &PricelistResult{}
	for _, record := range records {
		sku := record.Get("artikelkod")
		if sku == "" {
			continue
		}
		price := strings.Replace(record.Get("grundpris"), ",", ".", 1)

		updated, err := products.UpdatePrice(sku, price)
		if err != nil {
			return nil, fmt.Errorf("update price %s: %w", sku, err)
		}
		if updated {
			result.Updated++
		} else {
			result.Missing++
		}
	}
	slog.Info("price list applied", "updated", result.Updated, "missing", result.Missing)
	return result, nil
}
