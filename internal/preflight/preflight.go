package preflight

import (
	"context"
	"path/filepath"

	"moviematch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether the result should fail the overall run.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	titles := CheckDataFile("Titles file", cfg.Data.TitlesPath)
	matrix := CheckDataFile("Similarity matrix", cfg.Data.MatrixPath)
	results := []Result{titles, matrix}

	// Alignment is only meaningful once both files are readable.
	if titles.Passed && matrix.Passed {
		results = append(results, CheckCatalog(cfg.Data.TitlesPath, cfg.Data.MatrixPath))
	}

	if cfg.Cache.Backend == config.CacheBackendSQLite {
		results = append(results, CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Cache.Path)))
	}
	if cfg.Server.LockPath != "" {
		results = append(results, CheckDirectoryAccess("Lock directory", filepath.Dir(cfg.Server.LockPath)))
	}

	omdb := CheckOMDb(ctx, cfg.OMDb.BaseURL, cfg.OMDb.APIKey)
	omdb.Optional = true
	results = append(results, omdb)

	return results
}
