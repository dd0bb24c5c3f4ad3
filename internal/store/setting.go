// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"partspress/internal/models"
)

// SettingStore manages configuration values stored as JSON.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// Get returns the raw JSON value for a key. Returns nil if not found.
func (s *SettingStore) Get(key string) (json.RawMessage, error) {
	var val []byte
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return val, nil
}

// Set upserts a single setting. Creates it if it doesn't exist.
func (s *SettingStore) Set(key string, value json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = NOW()
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// PriceCurrency loads the currency configuration, falling back to the
// default when unset or unreadable.
func (s *SettingStore) PriceCurrency() (models.PriceCurrencySettings, error) {
	raw, err := s.Get("price_currency")
	if err != nil {
		return models.DefaultPriceCurrencySettings(), err
	}
	if raw == nil {
		return models.DefaultPriceCurrencySettings(), nil
	}
	var cfg models.PriceCurrencySettings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return models.DefaultPriceCurrencySettings(), nil
	}
	return cfg.Normalize(), nil
}

// SetPriceCurrency normalizes and stores the currency configuration.
func (s *SettingStore) SetPriceCurrency(cfg models.PriceCurrencySettings) (models.PriceCurrencySettings, error) {
	normalized := cfg.Normalize()
	raw, err := json.Marshal(normalized)
	if err != nil {
		return normalized, fmt.Errorf("marshal price currency: %w", err)
	}
	if err := s.Set("price_currency", raw); err != nil {
		return normalized, err
	}
	return normalized, nil
}
