package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. A missing OMDb credential is
// not an error: poster lookups fall back to the placeholder.
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if c.Recommend.Limit < 1 || c.Recommend.Limit > maxRecommendLimit {
		return fmt.Errorf("recommend.limit must be between 1 and %d", maxRecommendLimit)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.TitlesPath) == "" {
		return errors.New("data.titles_path must be set")
	}
	if strings.TrimSpace(c.Data.MatrixPath) == "" {
		return errors.New("data.matrix_path must be set")
	}
	return nil
}

func (c *Config) validateOMDb() error {
	parsed, err := url.Parse(c.OMDb.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("omdb.base_url must be an absolute URL, got %q", c.OMDb.BaseURL)
	}
	if c.OMDb.TimeoutSeconds < 0 {
		return errors.New("omdb.timeout_seconds must be positive")
	}
	if c.OMDb.BreakerFailures < 0 || c.OMDb.BreakerCooldownSeconds < 0 {
		return errors.New("omdb.breaker_failures and omdb.breaker_cooldown_seconds must be >= 0")
	}
	if strings.TrimSpace(c.OMDb.PlaceholderURL) == "" {
		return errors.New("omdb.placeholder_url must be set")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendSQLite:
		if strings.TrimSpace(c.Cache.Path) == "" {
			return errors.New("cache.path must be set when cache.backend is sqlite")
		}
	case CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of sqlite, memory, none (got %q)", c.Cache.Backend)
	}
	if c.Cache.Backend != CacheBackendNone && c.Cache.TTLHours < 0 {
		return errors.New("cache.ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerMinute < 0 {
		return errors.New("server.rate_limit_per_minute must be >= 0")
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("server.cors_origins: %q is not an origin", origin)
		}
	}
	return nil
}
