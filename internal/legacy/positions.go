package legacy

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// Position is one drawing position override for a product link.
type Position struct {
	PosNum  int
	NoUnits int
}

// PositionMap holds link position overrides keyed by "sku|categoryKey".
type PositionMap map[string]Position

// Lookup returns the override for a link, defaulting to position 0 with a
// single unit.
func (m PositionMap) Lookup(sku, categoryKey string) Position {
	if p, ok := m[sku+"|"+categoryKey]; ok {
		return p
	}
	return Position{PosNum: 0, NoUnits: 1}
}

// ParsePositionsCSV reads a semicolon-separated position override file
// (sku;category_key;pos_num;no_units, header in row one). Sentinel SKUs
// and short rows are skipped.
func ParsePositionsCSV(data []byte) (PositionMap, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	positions := make(PositionMap)
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < 4 {
			continue
		}
		sku := strings.TrimSpace(record[0])
		categoryKey := strings.TrimSpace(record[1])
		if sku == "" || sku == ">" || sku == "<" {
			continue
		}
		posNum, _ := strconv.Atoi(strings.TrimSpace(record[2]))
		noUnits, _ := strconv.Atoi(strings.TrimSpace(record[3]))
		if noUnits == 0 {
			noUnits = 1
		}
		positions[sku+"|"+categoryKey] = Position{PosNum: posNum, NoUnits: noUnits}
	}
	return positions, nil
}
