package testsupport

import (
	"path/filepath"
	"testing"

	"moviematch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Poster lookups are disabled and the response cache lives in memory unless
// options say otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Data.TitlesPath = filepath.Join(base, "model", "movie_list.csv")
	cfgVal.Data.MatrixPath = filepath.Join(base, "model", "similarity.npy")
	cfgVal.Cache.Backend = config.CacheBackendMemory
	cfgVal.Cache.Path = filepath.Join(base, "cache", "movie_cache.sqlite")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.LockPath = filepath.Join(base, "run", "server.lock")
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the OMDb credential on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.APIKey = key
	}
}

// WithOMDbServer points the config at a fake metadata service and sets a
// credential so lookups are attempted.
func WithOMDbServer(server *OMDbServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.BaseURL = server.URL()
		if b.cfg.OMDb.APIKey == "" {
			b.cfg.OMDb.APIKey = OMDbTestKey
		}
	}
}

// WithSQLiteCache switches the response cache to the on-disk backend.
func WithSQLiteCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = config.CacheBackendSQLite
	}
}

// WithCatalog writes titles and matrix into the config's data paths.
func WithCatalog(titles []string, matrix [][]float64) ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Data.TitlesPath, b.cfg.Data.MatrixPath, titles, matrix)
	}
}

// WithReferenceCatalog writes the seven-title A..G fixture.
func WithReferenceCatalog() ConfigOption {
	return func(b *configBuilder) {
		titles, matrix := ReferenceCatalog()
		WriteCatalog(b.t, b.cfg.Data.TitlesPath, b.cfg.Data.MatrixPath, titles, matrix)
	}
}
