// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"partspress/internal/legacy"
	"partspress/internal/storage"
	"partspress/internal/store"
)

// ErrNoMains is returned when an export run finds no main categories to
// publish.
var ErrNoMains = errors.New("no main categories found")

// Invalidator drops cached export reads after a run replaces the files.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Runner executes full export runs: per-machine category and product
// files, the global machine hierarchy and price settings, and the
// contract manifest.
type Runner struct {
	Categories *store.CategoryStore
	Products   *store.ProductStore
	Machines   *store.MachineCategoryStore
	Settings   *store.SettingStore
	JSON       storage.Store
	Legacy     storage.Store
	Assembler  *Assembler
	Cache      Invalidator
}

// RunOptions narrows a run. Zero value exports everything.
type RunOptions struct {
	// MainKey restricts the run to one machine; empty exports all mains.
	MainKey string
	// SkipGlobal leaves machine-categories.json and price-settings.json
	// untouched.
	SkipGlobal bool
	// OnlyGlobal publishes just the global files.
	OnlyGlobal bool
}

// RunResult lists what a run published.
type RunResult struct {
	Files           []string `json:"files"`
	ContractVersion string   `json:"contractVersion"`
}

// Run performs an export and rewrites the contract manifest. The cache is
// invalidated afterward so readers see the new files immediately.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	result := &RunResult{Files: []string{}, ContractVersion: ContractVersion}
	var entries []ManifestEntry

	if !opts.OnlyGlobal {
		var mains []string
		if key := strings.TrimSpace(opts.MainKey); key != "" {
			mains = []string{key}
		} else {
			mainCategories, err := r.Categories.ListMain()
			if err != nil {
				return nil, fmt.Errorf("list main categories: %w", err)
			}
			for _, cat := range mainCategories {
				mains = append(mains, cat.Key)
			}
		}
		if len(mains) == 0 {
			return nil, ErrNoMains
		}

		for _, mainKey := range mains {
			files, err := r.exportMain(ctx, mainKey)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, files...)
			for _, file := range files {
				entries = append(entries, ManifestEntry{File: file, Scope: mainKey})
			}
		}
	}

	if !opts.SkipGlobal || opts.OnlyGlobal {
		nodes, err := r.Machines.Hierarchy()
		if err != nil {
			return nil, fmt.Errorf("load machine hierarchy: %w", err)
		}
		if err := WriteJSONValidated(ctx, r.JSON, "machine-categories.json", nodes, ValidateMachineCategories, "machine categories export"); err != nil {
			return nil, err
		}
		settings, err := r.Settings.PriceCurrency()
		if err != nil {
			return nil, fmt.Errorf("load price settings: %w", err)
		}
		if err := WriteJSONValidated(ctx, r.JSON, "price-settings.json", settings, ValidatePriceSettings, "price settings export"); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, "machine-categories.json", "price-settings.json")
		entries = append(entries,
			ManifestEntry{File: "machine-categories.json", Scope: "global"},
			ManifestEntry{File: "price-settings.json", Scope: "global"},
		)
	}

	if err := WriteManifest(ctx, r.JSON, entries); err != nil {
		return nil, err
	}

	if r.Cache != nil {
		if err := r.Cache.InvalidateAll(ctx); err != nil {
			slog.Warn("export cache invalidation failed", "error", err)
		}
	}

	slog.Info("json export complete", "files", len(result.Files), "main_key", opts.MainKey)
	return result, nil
}

// exportMain publishes the category and product files for one machine.
func (r *Runner) exportMain(ctx context.Context, mainKey string) ([]string, error) {
	categories, err := r.Categories.ListTree(mainKey)
	if err != nil {
		return nil, fmt.Errorf("load categories %s: %w", mainKey, err)
	}

	snapshot, err := legacy.LoadCategories(ctx, r.Legacy, mainKey)
	if err != nil {
		slog.Warn("legacy snapshot unreadable, exporting without overrides", "main_key", mainKey, "error", err)
	}
	overrides := legacy.BuildOverrides(snapshot)

	filtered := FilterAllowed(categories, overrides)
	categoryItems := r.Assembler.CategoryItems(ctx, filtered, overrides)

	parts, err := r.Products.PartsForTree(mainKey)
	if err != nil {
		return nil, fmt.Errorf("load parts %s: %w", mainKey, err)
	}
	productItems := r.Assembler.ProductItems(parts, filtered)

	categoriesFile := "categories-" + mainKey + ".json"
	productsFile := "products-" + mainKey + ".json"
	if err := WriteJSONValidated(ctx, r.JSON, categoriesFile, categoryItems, ValidateCategories, "categories export"); err != nil {
		return nil, err
	}
	if err := WriteJSONValidated(ctx, r.JSON, productsFile, productItems, ValidateProducts, "products export"); err != nil {
		return nil, err
	}
	return []string{categoriesFile, productsFile}, nil
}
