package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"partspress/internal/storage"
)

// ManifestEntry records one published file and the main key (or "global")
// it belongs to.
type ManifestEntry struct {
	File  string `json:"file"`
	Scope string `json:"scope"`
}

// Manifest is the _contract.json document published next to the exports.
type Manifest struct {
	Version     string          `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	Files       []ManifestEntry `json:"files"`
}

// WriteJSONValidated marshals payload, validates the decoded result, and
// writes it to the store. Nothing is written when validation fails; the
// error names the label and the first ten violations.
func WriteJSONValidated(ctx context.Context, dst storage.Store, name string, payload any, validate ValidateFunc, label string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", label, err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode %s: %w", label, err)
	}
	result := validate(decoded)
	if !result.OK {
		sample := result.Errors.Items
		if len(sample) > 10 {
			sample = sample[:10]
		}
		return fmt.Errorf("%s validation failed: %s", label, strings.Join(sample, " | "))
	}
	if err := dst.Put(ctx, name, data, "application/json"); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteManifest publishes _contract.json describing the current export.
func WriteManifest(ctx context.Context, dst storage.Store, entries []ManifestEntry) error {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	manifest := Manifest{
		Version:     ContractVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Files:       entries,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal contract manifest: %w", err)
	}
	if err := dst.Put(ctx, "_contract.json", data, "application/json"); err != nil {
		return fmt.Errorf("write contract manifest: %w", err)
	}
	return nil
}
