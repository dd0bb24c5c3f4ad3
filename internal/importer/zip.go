package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"partspress/internal/keys"
	"partspress/internal/legacy"
	"partspress/internal/storage"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// ZipReport summarizes an image archive check.
type ZipReport struct {
	TotalEntries   int               `json:"totalEntries"`
	FileEntries    int               `json:"fileEntries"`
	InvalidExt     int               `json:"invalidExt"`
	DuplicateBases legacy.CappedList `json:"duplicateBases"`
	InvalidSamples legacy.CappedList `json:"invalidSamples"`
}

// ValidateZip inspects an uploaded drawing archive without extracting
// it: entry names must sanitize to something and carry an allowed image
// extension.
func ValidateZip(data []byte) (*ZipReport, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	report := &ZipReport{}
	seen := make(map[string]bool)
	var duplicates, invalid []string
	duplicateSeen := make(map[string]bool)

	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		report.TotalEntries++
		ext := strings.ToLower(path.Ext(entry.Name))
		base := keys.SanitizeFileName(strings.TrimSuffix(path.Base(entry.Name), path.Ext(entry.Name)))
		if ext == "" || base == "" || !allowedImageExts[ext] {
			report.InvalidExt++
			if len(invalid) < 50 {
				invalid = append(invalid, entry.Name)
			}
			continue
		}
		report.FileEntries++
		if seen[base] {
			if !duplicateSeen[base] {
				duplicateSeen[base] = true
				duplicates = append(duplicates, base)
			}
			continue
		}
		seen[base] = true
	}

	report.DuplicateBases = legacy.Cap(duplicates, 50)
	report.InvalidSamples = legacy.Cap(invalid, 50)
	return report, nil
}

// ExtractZip writes every valid image entry to the store under its
// sanitized base name and returns the number of files written. Later
// entries with the same base overwrite earlier ones.
func ExtractZip(ctx context.Context, data []byte, dst storage.Store) (int, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}

	count := 0
	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name))
		if !allowedImageExts[ext] {
			continue
		}
		base := keys.SanitizeFileName(strings.TrimSuffix(path.Base(entry.Name), path.Ext(entry.Name)))
		if base == "" {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return count, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return count, fmt.Errorf("read zip entry %s: %w", entry.Name, err)
		}

		name := base + ext
		if err := dst.Put(ctx, name, content, mime.TypeByExtension(ext)); err != nil {
			return count, fmt.Errorf("store %s: %w", name, err)
		}
		count++
	}
	return count, nil
}
