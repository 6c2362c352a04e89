package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeData(); err != nil {
		return err
	}
	c.normalizeOMDb()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if c.Recommend.Limit == 0 {
		c.Recommend.Limit = defaultRecommendLimit
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeData() error {
	// MOVIEMATCH_DATA_DIR relocates files left at their default relative names.
	if dir, ok := os.LookupEnv(envDataDir); ok && strings.TrimSpace(dir) != "" {
		dir = strings.TrimSpace(dir)
		if c.Data.TitlesPath == defaultTitlesPath {
			c.Data.TitlesPath = filepath.Join(dir, filepath.Base(defaultTitlesPath))
		}
		if c.Data.MatrixPath == defaultMatrixPath {
			c.Data.MatrixPath = filepath.Join(dir, filepath.Base(defaultMatrixPath))
		}
	}
	var err error
	if c.Data.TitlesPath, err = expandPath(strings.TrimSpace(c.Data.TitlesPath)); err != nil {
		return fmt.Errorf("data.titles_path: %w", err)
	}
	if c.Data.MatrixPath, err = expandPath(strings.TrimSpace(c.Data.MatrixPath)); err != nil {
		return fmt.Errorf("data.matrix_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOMDb() {
	c.OMDb.APIKey = strings.TrimSpace(c.OMDb.APIKey)
	if c.OMDb.APIKey == "" {
		if value, ok := os.LookupEnv(envAPIKey); ok {
			c.OMDb.APIKey = strings.TrimSpace(value)
		}
	}
	c.OMDb.BaseURL = strings.TrimSpace(c.OMDb.BaseURL)
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = defaultOMDbBaseURL
	}
	c.OMDb.PlaceholderURL = strings.TrimSpace(c.OMDb.PlaceholderURL)
	if c.OMDb.PlaceholderURL == "" {
		c.OMDb.PlaceholderURL = defaultPlaceholderURL
	}
	if c.OMDb.TimeoutSeconds == 0 {
		c.OMDb.TimeoutSeconds = defaultOMDbTimeout
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendSQLite
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
	if c.Cache.Backend != CacheBackendSQLite {
		return nil
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	var err error
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() error {
	if value, ok := os.LookupEnv(envServerBind); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	var err error
	if strings.TrimSpace(c.Server.LockPath) == "" {
		c.Server.LockPath = defaultLockPath
	}
	if c.Server.LockPath, err = expandPath(strings.TrimSpace(c.Server.LockPath)); err != nil {
		return fmt.Errorf("server.lock_path: %w", err)
	}
	if c.Server.StylesheetPath, err = expandPath(strings.TrimSpace(c.Server.StylesheetPath)); err != nil {
		return fmt.Errorf("server.stylesheet_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "auto", "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
