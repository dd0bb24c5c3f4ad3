package importer

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"partspress/internal/storage"
	"partspress/internal/store"
)

// SaveCatalogImage stores an uploaded catalog cover under a name derived
// from the main key and records it on the category. Returns the stored
// file name.
func SaveCatalogImage(ctx context.Context, catalogs storage.Store, categories *store.CategoryStore, data []byte, originalName, mainKey string) (string, error) {
	if mainKey == "" {
		return "", nil
	}
	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	fileName := "product_catalog_image-" + mainKey + ext
	if err := catalogs.Put(ctx, fileName, data, mime.TypeByExtension(ext)); err != nil {
		return "", fmt.Errorf("store catalog image %s: %w", fileName, err)
	}
	if err := categories.SetCatalogImage(mainKey, &fileName); err != nil {
		return "", fmt.Errorf("record catalog image %s: %w", mainKey, err)
	}
	return fileName, nil
}
