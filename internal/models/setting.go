// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// Setting represents a single configuration key with a JSON value.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Currency is one entry in the configured currency list. The base
// currency always carries rate 1.
type Currency struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// PriceCurrencySettings is the value stored under the price_currency key.
type PriceCurrencySettings struct {
	BaseCurrency string     `json:"baseCurrency"`
	Currencies   []Currency `json:"currencies"`
}

// DefaultPriceCurrencySettings returns the fallback used when no
// price_currency setting has been saved.
func DefaultPriceCurrencySettings() PriceCurrencySettings {
	return PriceCurrencySettings{
		BaseCurrency: "SEK",
		Currencies:   []Currency{{Code: "SEK", Name: "Swedish krona", Rate: 1}},
	}
}

// Normalize deduplicates the currency list, forces the base currency to
// rate 1, and guarantees the base currency is present.
func (s PriceCurrencySettings) Normalize() PriceCurrencySettings {
	base := s.BaseCurrency
	if base == "" {
		base = "SEK"
	}
	out := PriceCurrencySettings{BaseCurrency: base}
	seen := make(map[string]bool)
	for _, c := range s.Currencies {
		if c.Code == "" || seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		if c.Code == base {
			c.Rate = 1
		}
		out.Currencies = append(out.Currencies, c)
	}
	if !seen[base] {
		out.Currencies = append([]Currency{{Code: base, Name: base, Rate: 1}}, out.Currencies...)
	}
	return out
}
