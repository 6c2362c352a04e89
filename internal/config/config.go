package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Data points at the offline-built catalog and similarity matrix.
type Data struct {
	TitlesPath string `toml:"titles_path"`
	MatrixPath string `toml:"matrix_path"`
}

// OMDb contains configuration for the poster metadata service.
type OMDb struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	PlaceholderURL string `toml:"placeholder_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// BreakerFailures consecutive upstream errors pause lookups for
	// BreakerCooldownSeconds. Zero disables the breaker.
	BreakerFailures        int `toml:"breaker_failures"`
	BreakerCooldownSeconds int `toml:"breaker_cooldown_seconds"`
}

// Cache contains configuration for the metadata response cache.
type Cache struct {
	Backend  string `toml:"backend"` // sqlite, memory or none
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// Server contains configuration for the HTTP surface.
type Server struct {
	Bind               string `toml:"bind"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
	LockPath           string `toml:"lock_path"`
	StylesheetPath     string `toml:"stylesheet_path"`
	// CORSOrigins lists origins allowed to call /api from a browser.
	CORSOrigins []string `toml:"cors_origins"`
}

// Recommend contains tuning for the recommendation flow.
type Recommend struct {
	Limit int `toml:"limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for moviematch.
//
// Configuration sections by subsystem:
//   - Data: static catalog and similarity matrix files
//   - OMDb: poster lookups (credential, endpoint, placeholder)
//   - Cache: response cache backend and expiry
//   - Server: HTTP bind address, rate limiting, single-instance lock
//   - Recommend: number of recommendations returned
//   - Logging: log format, level, and optional file
type Config struct {
	Data      Data      `toml:"data"`
	OMDb      OMDb      `toml:"omdb"`
	Cache     Cache     `toml:"cache"`
	Server    Server    `toml:"server"`
	Recommend Recommend `toml:"recommend"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is read
// before environment fallbacks are applied; variables already set win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := LoadDotEnv(dotEnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("moviematch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// HasCredential reports whether poster lookups can reach the metadata service.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.OMDb.APIKey) != ""
}

// EnsureDirectories creates the directories the cache and server lock live in.
func (c *Config) EnsureDirectories() error {
	dirs := make([]string, 0, 3)
	if c.Cache.Backend == CacheBackendSQLite && c.Cache.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	}
	if c.Server.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.Server.LockPath))
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
