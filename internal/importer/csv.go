// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer ingests semicolon-separated catalog exports, image
// archives, and price lists into the database.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// Record is one CSV row keyed by normalized header names.
type Record map[string]string

var headerWhitespace = regexp.MustCompile(`\s+`)

// normalizeHeader folds a header cell to a stable column name: trimmed,
// lowercased, Swedish vowels (and their mojibake forms) replaced, spaces
// collapsed to underscores.
func normalizeHeader(value string) string {
	result := strings.ToLower(strings.TrimSpace(value))
	result = strings.ReplaceAll(result, "Ã¥", "a")
	result = strings.ReplaceAll(result, "å", "a")
	result = strings.ReplaceAll(result, "Ã¤", "a")
	result = strings.ReplaceAll(result, "ä", "a")
	result = strings.ReplaceAll(result, "Ã¶", "o")
	result = strings.ReplaceAll(result, "ö", "o")
	return headerWhitespace.ReplaceAllString(result, "_")
}

// ParseCSV reads a semicolon-separated export. The first row is the
// header; a UTF-8 BOM is tolerated and ragged rows are padded with empty
// strings.
func ParseCSV(data []byte) ([]Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = normalizeHeader(cell)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// Get returns a trimmed field value.
func (r Record) Get(name string) string {
	return strings.TrimSpace(r[name])
}
