package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"moviematch/internal/catalog"
	"moviematch/internal/config"
	"moviematch/internal/logging"
	"moviematch/internal/poster"
	"moviematch/internal/recommend"
	"moviematch/internal/respcache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// responseCache is satisfied by every respcache backend.
type responseCache interface {
	respcache.Fetcher
	respcache.Maintainer
}

// app bundles the collaborators a command needs for one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   responseCache
	service *recommend.Service

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug("close failed", logging.Error(err))
		}
	}
	a.closers = nil
}

func (c *commandContext) newLogger() (*config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// openCacheOnly is used by the cache maintenance commands, which never need
// the catalog.
func (c *commandContext) openCacheOnly(ctx context.Context) (*app, error) {
	cfg, logger, err := c.newLogger()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	if err := a.openCache(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// buildApp loads the catalog, opens the response cache and wires the
// recommendation service. Missing data files abort with a message naming both
// expected paths.
func (c *commandContext) buildApp(ctx context.Context) (*app, error) {
	cfg, logger, err := c.newLogger()
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if err := a.openCache(ctx); err != nil {
		return nil, err
	}
	resolver, err := poster.NewFromConfig(cfg, a.cache, logging.NewComponentLogger(logger, "poster"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = recommend.NewService(cat, resolver,
		recommend.WithLimit(cfg.Recommend.Limit),
		recommend.WithLogger(logging.NewComponentLogger(logger, "recommend")))
	return a, nil
}

func loadCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Data.TitlesPath, cfg.Data.MatrixPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if bad := cat.NonFinite(); bad > 0 {
		logging.WarnWithContext(logger, "similarity matrix contains non-finite scores", "catalog_non_finite",
			logging.Int("count", bad),
			logging.String(logging.FieldErrorHint, "rebuild the similarity matrix"),
			logging.String(logging.FieldImpact, "affected titles rank last"))
	}
	logger.Debug("catalog loaded",
		logging.Int("titles", cat.Len()),
		logging.String("titles_path", cfg.Data.TitlesPath),
		logging.String("matrix_path", cfg.Data.MatrixPath))
	return cat, nil
}

func (a *app) openCache(ctx context.Context) error {
	cacheLogger := logging.NewComponentLogger(a.logger, "respcache")
	switch a.cfg.Cache.Backend {
	case config.CacheBackendSQLite:
		store, err := respcache.OpenSQLite(ctx, a.cfg.Cache.Path, respcache.WithLogger(cacheLogger))
		if err != nil {
			return fmt.Errorf("open response cache: %w", err)
		}
		a.cache = store
		a.closers = append(a.closers, store.Close)
	case config.CacheBackendMemory:
		a.cache = respcache.NewMemory(respcache.WithLogger(cacheLogger))
	default:
		a.cache = respcache.Passthrough{}
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
