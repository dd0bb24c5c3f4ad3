// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"fmt"

	"partspress/internal/legacy"
)

// ContractVersion identifies the published JSON shape. Consumers pin on
// it via the _contract.json manifest.
const ContractVersion = "1.0.0"

// ValidationResult reports contract conformance of one payload.
type ValidationResult struct {
	OK     bool              `json:"ok"`
	Errors legacy.CappedList `json:"errors"`
}

// ValidateFunc checks a JSON-decoded payload against the contract.
type ValidateFunc func(payload any) ValidationResult

func resultFrom(errs []string) ValidationResult {
	return ValidationResult{OK: len(errs) == 0, Errors: legacy.Cap(errs, 50)}
}

func isString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// JSON numbers decode as float64.
func isNumber(v any) bool {
	_, ok := v.(float64)
	return ok
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// ValidateCategories checks a categories-<mainKey>.json payload.
func ValidateCategories(payload any) ValidationResult {
	items, ok := payload.([]any)
	if !ok {
		return resultFrom([]string{"Categories payload must be an array."})
	}
	var errs []string
	for index, raw := range items {
		prefix := fmt.Sprintf("categories[%d]", index)
		item, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, prefix+" must be an object.")
			continue
		}
		if !isNumber(item["id"]) {
			errs = append(errs, prefix+".id must be a number.")
		}
		if key, ok := isString(item["key"]); !ok || key == "" {
			errs = append(errs, prefix+".key must be a non-empty string.")
		}
		if _, ok := isString(item["name"]); !ok {
			errs = append(errs, prefix+".name must be a string.")
		}
		if !isNumber(item["parent"]) {
			errs = append(errs, prefix+".parent must be a number.")
		}
		if !isObject(item["lang_name"]) {
			errs = append(errs, prefix+".lang_name must be an object.")
		}
		if !isObject(item["lang_desc"]) {
			errs = append(errs, prefix+".lang_desc must be an object.")
		}
	}
	return resultFrom(errs)
}

// ValidateProducts checks a products-<mainKey>.json payload.
func ValidateProducts(payload any) ValidationResult {
	items, ok := payload.([]any)
	if !ok {
		return resultFrom([]string{"Products payload must be an array."})
	}
	var errs []string
	for index, raw := range items {
		prefix := fmt.Sprintf("products[%d]", index)
		item, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, prefix+" must be an object.")
			continue
		}
		if !isNumber(item["id"]) {
			errs = append(errs, prefix+".id must be a number.")
		}
		if sku, ok := isString(item["sku"]); !ok || sku == "" {
			errs = append(errs, prefix+".sku must be a non-empty string.")
		}
		if _, ok := isString(item["name"]); !ok {
			errs = append(errs, prefix+".name must be a string.")
		}
		if !isObject(item["lang_name"]) {
			errs = append(errs, prefix+".lang_name must be an object.")
		}
		if !isObject(item["lang_desc"]) {
			errs = append(errs, prefix+".lang_desc must be an object.")
		}
		if _, ok := item["categories"].([]any); !ok {
			errs = append(errs, prefix+".categories must be an array.")
		}
	}
	return resultFrom(errs)
}

// ValidatePriceSettings checks a price-settings.json payload.
func ValidatePriceSettings(payload any) ValidationResult {
	settings, ok := payload.(map[string]any)
	if !ok {
		return resultFrom([]string{"Price settings payload must be an object."})
	}
	var errs []string
	if base, ok := isString(settings["baseCurrency"]); !ok || base == "" {
		errs = append(errs, "price_settings.baseCurrency must be a non-empty string.")
	}
	currencies, ok := settings["currencies"].([]any)
	if !ok {
		errs = append(errs, "price_settings.currencies must be an array.")
	} else {
		for index, raw := range currencies {
			prefix := fmt.Sprintf("price_settings.currencies[%d]", index)
			entry, ok := raw.(map[string]any)
			if !ok {
				errs = append(errs, prefix+" must be an object.")
				continue
			}
			if code, ok := isString(entry["code"]); !ok || code == "" {
				errs = append(errs, prefix+".code must be a string.")
			}
			if _, present := entry["rate"]; !present {
				errs = append(errs, prefix+".rate is required.")
			}
		}
	}
	return resultFrom(errs)
}

// ValidateMachineCategories checks a machine-categories.json payload,
// descending into nested children.
func ValidateMachineCategories(payload any) ValidationResult {
	items, ok := payload.([]any)
	if !ok {
		return resultFrom([]string{"Machine categories payload must be an array."})
	}
	var errs []string
	var validateNode func(raw any, path string)
	validateNode = func(raw any, path string) {
		node, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, path+" must be an object.")
			return
		}
		if !isNumber(node["id"]) {
			errs = append(errs, path+".id must be a number.")
		}
		if key, ok := isString(node["key"]); !ok || key == "" {
			errs = append(errs, path+".key must be a non-empty string.")
		}
		if _, ok := isString(node["name"]); !ok {
			errs = append(errs, path+".name must be a string.")
		}
		if !isNumber(node["parent"]) {
			errs = append(errs, path+".parent must be a number.")
		}
		if !isObject(node["lang_name"]) {
			errs = append(errs, path+".lang_name must be an object.")
		}
		if !isObject(node["lang_desc"]) {
			errs = append(errs, path+".lang_desc must be an object.")
		}
		if children, ok := node["children"].([]any); ok {
			for idx, child := range children {
				validateNode(child, fmt.Sprintf("%s.children[%d]", path, idx))
			}
		}
	}
	for index, node := range items {
		validateNode(node, fmt.Sprintf("machine_categories[%d]", index))
	}
	return resultFrom(errs)
}
