// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package keys provides canonical category keys, file name sanitization,
// and slug generation for catalog data imported from backslash-separated
// category paths.
package keys

import (
	"regexp"
	"strings"
)

var (
	// whitespace matches runs of whitespace characters.
	whitespace = regexp.MustCompile(`\s+`)
	// commaToken matches the literal escape token used in source file names.
	commaToken = regexp.MustCompile(`(?i)\[comma\]`)
	// disallowed matches anything outside the sanitized alphabet.
	disallowed = regexp.MustCompile(`[^a-z0-9_-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Canonical converts a backslash-separated category path into its
// canonical key form. Example: `Motor\Drivaxel` → "motor-drivaxel".
func Canonical(path string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(path), `\`, "-"))
}

// Parent returns the canonical key of the parent of a backslash-separated
// category path, or "" when the path has no parent segment.
func Parent(path string) string {
	var parts []string
	for _, p := range strings.Split(strings.TrimSpace(path), `\`) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) <= 1 {
		return ""
	}
	return Canonical(strings.Join(parts[:len(parts)-1], `\`))
}

// SanitizeFileName normalizes an image or asset base name so lookups work
// across differently encoded sources. Swedish letters are folded to ASCII,
// including their mojibake forms from files that went through a Latin-1
// round trip.
func SanitizeFileName(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	result = strings.ReplaceAll(result, "Ã¥", "a")
	result = strings.ReplaceAll(result, "å", "a")
	result = strings.ReplaceAll(result, "Ã¤", "a")
	result = strings.ReplaceAll(result, "ä", "a")
	result = strings.ReplaceAll(result, "Ã¶", "o")
	result = strings.ReplaceAll(result, "ö", "o")
	result = whitespace.ReplaceAllString(result, "_")
	result = strings.ReplaceAll(result, "--", "-")
	result = strings.ReplaceAll(result, "%20", "_")
	result = commaToken.ReplaceAllString(result, ",")
	result = disallowed.ReplaceAllString(result, "")
	return result
}

// Slugify creates a hyphen-separated slug from the given string.
// Example: "Hydraulik pump" → "hydraulik-pump"
func Slugify(value string) string {
	base := strings.ReplaceAll(SanitizeFileName(value), "_", "-")
	return multipleHyphens.ReplaceAllString(base, "-")
}

// PosLabel builds a display label from a drawing position and a part name.
// When the name starts with a single letter followed by a space, that
// letter is a position suffix on the drawing and is appended to the label.
func PosLabel(position, name string) string {
	pos := position
	if pos == "" {
		pos = "0"
	}
	trimmed := strings.TrimSpace(name)
	if len(trimmed) >= 2 && trimmed[1] == ' ' {
		letter := trimmed[0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		if letter >= 'A' && letter <= 'Z' {
			return pos + string(letter)
		}
	}
	return pos
}
