package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"moviematch/internal/catalog"
	"moviematch/internal/config"
	"moviematch/internal/respcache"
)

// MustOpenCache opens the SQLite response cache at the config's cache path
// and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *respcache.SQLite {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		t.Fatalf("mkdir cache dir: %v", err)
	}
	store, err := respcache.OpenSQLite(context.Background(), cfg.Cache.Path)
	if err != nil {
		t.Fatalf("respcache.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustLoadCatalog loads the catalog named by cfg.
func MustLoadCatalog(t testing.TB, cfg *config.Config) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Load(cfg.Data.TitlesPath, cfg.Data.MatrixPath)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return cat
}
