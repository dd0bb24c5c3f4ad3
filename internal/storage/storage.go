// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides logical file stores backed either by
// S3-compatible object storage or the local filesystem. Each store covers
// one file area: category drawings, catalog images, published JSON, and
// uploaded legacy snapshots.
package storage

import (
	"context"
	"errors"
	"path"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is one logical file area.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error
	// PublicURL returns the URL a browser can fetch the object from, or
	// "" for an empty name.
	PublicURL(name string) string
}

// Client bundles the stores the application works with. Legacy holds
// uploaded platform snapshots used as export overrides; it is never
// served publicly.
type Client struct {
	CategoryImages Store
	CatalogImages  Store
	JSON           Store
	Legacy         Store
}

// Config selects the backend. With a full S3 configuration the stores
// live under object key prefixes; otherwise they are directories under
// DataDir served by the application itself.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	CDNURL    string

	DataDir string
	// LegacyDir overrides the local snapshot directory. Empty means
	// DataDir/legacy-json.
	LegacyDir     string
	PublicBaseURL string
}

// New builds a storage client. S3 is used when endpoint, credentials, and
// bucket are all set; anything less falls back to local directories so
// the app can run without object storage.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Bucket != "" {
		s3c := newS3Backend(cfg)
		return &Client{
			CategoryImages: s3c.store("storage/spare-part-images"),
			CatalogImages:  s3c.store("storage/product-catalog-images"),
			JSON:           s3c.store("output/json"),
			Legacy:         s3c.store("storage/legacy-json"),
		}, nil
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	legacyDir := cfg.LegacyDir
	if legacyDir == "" {
		legacyDir = path.Join(dataDir, "legacy-json")
	}
	base := cfg.PublicBaseURL
	return &Client{
		CategoryImages: newLocalStore(path.Join(dataDir, "images", "spare-part-images"), base+"/images/spare-part-images"),
		CatalogImages:  newLocalStore(path.Join(dataDir, "images", "product-catalog-images"), base+"/images/product-catalog-images"),
		JSON:           newLocalStore(path.Join(dataDir, "json"), base+"/json"),
		Legacy:         newLocalStore(legacyDir, base+"/legacy-json"),
	}, nil
}
