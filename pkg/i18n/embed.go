package i18n

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed locales/*
var embeddedLocales embed.FS

// EmbeddedFS returns the bundled catalogs.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return sub
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
	defaultCatalogErr  error
)

// Default returns the catalog built from the embedded locales. The result is
// shared; callers that need overrides should Merge it into a new Catalog.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = LoadFS(EmbeddedFS(), DefaultLocale)
	})
	return defaultCatalog, defaultCatalogErr
}

// Load builds a catalog from the embedded locales overlaid with the catalogs
// found in overlay (which may be nil).
func Load(overlay fs.FS) (*Catalog, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog(DefaultLocale)
	catalog.Merge(base)
	if overlay == nil {
		return catalog, nil
	}
	extra, err := LoadFS(overlay, DefaultLocale)
	if err != nil {
		return nil, err
	}
	catalog.Merge(extra)
	return catalog, nil
}
