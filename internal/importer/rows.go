package importer

import (
	"strconv"
	"strings"

	"partspress/internal/keys"
)

// Row is one decoded import line. The concrete type determines what the
// apply step does with it.
type Row interface {
	isRow()
}

// RowProdukt declares a machine: its main category.
type RowProdukt struct {
	Key      string
	Path     string
	NameSV   string
	DescSV   string
	NameEN   string
	DescEN   string
	Position int
}

// RowKategori declares an assembly category under a machine.
type RowKategori struct {
	Key       string
	Path      string
	ParentKey string
	NameSV    string
	DescSV    string
	NameEN    string
	DescEN    string
	Position  int
}

// RowArtikel declares a spare part and its link into a category.
type RowArtikel struct {
	SKU         string
	CategoryKey string
	NameSV      string
	DescSV      string
	NameEN      string
	DescEN      string
	Position    int
	NoUnits     string
}

func (RowProdukt) isRow()  {}
func (RowKategori) isRow() {}
func (RowArtikel) isRow()  {}

// parsePosition reads the "number" column. Anything non-numeric counts
// as position 0.
func parsePosition(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}

// DecodeRows turns validated records into typed rows. Records that fail
// the basic shape (unknown type, empty path, artikel without a SKU) are
// dropped; ValidateRows reports those before apply runs.
func DecodeRows(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rowType := strings.ToLower(record.Get("type"))
		path := record.Get("category_path")
		key := keys.Canonical(path)
		if key == "" {
			continue
		}

		switch rowType {
		case "produkt":
			rows = append(rows, RowProdukt{
				Key:      key,
				Path:     path,
				NameSV:   record.Get("name_sv"),
				DescSV:   record.Get("desc_sv"),
				NameEN:   record.Get("name_en"),
				DescEN:   record.Get("desc_en"),
				Position: parsePosition(record.Get("number")),
			})
		case "kategori":
			rows = append(rows, RowKategori{
				Key:       key,
				Path:      path,
				ParentKey: keys.Parent(path),
				NameSV:    record.Get("name_sv"),
				DescSV:    record.Get("desc_sv"),
				NameEN:    record.Get("name_en"),
				DescEN:    record.Get("desc_en"),
				Position:  parsePosition(record.Get("number")),
			})
		case "artikel":
			sku := record.Get("artikel_id")
			if sku == "" {
				continue
			}
			noUnits := record.Get("no_units")
			if noUnits == "" {
				noUnits = "1"
			}
			rows = append(rows, RowArtikel{
				SKU:         sku,
				CategoryKey: key,
				NameSV:      record.Get("name_sv"),
				DescSV:      record.Get("desc_sv"),
				NameEN:      record.Get("name_en"),
				DescEN:      record.Get("desc_en"),
				Position:    parsePosition(record.Get("number")),
				NoUnits:     noUnits,
			})
		}
	}
	return rows
}
