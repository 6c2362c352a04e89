package config

import "time"

const (
	defaultConfigPath     = "~/.config/moviematch/config.toml"
	dotEnvFile            = ".env"
	defaultTitlesPath     = "model/movie_list.csv"
	defaultMatrixPath     = "model/similarity.npy"
	defaultOMDbBaseURL    = "http://www.omdbapi.com/"
	defaultPlaceholderURL = "https://via.placeholder.com/500x750?text=No+Poster"
	defaultOMDbTimeout    = 10
	defaultBreakerFails   = 5
	defaultBreakerCool    = 60
	defaultCachePath      = "~/.cache/moviematch/movie_cache.sqlite"
	defaultCacheTTLHours  = 24
	defaultServerBind     = "127.0.0.1:8501"
	defaultRateLimit      = 120
	defaultLockPath       = "~/.cache/moviematch/server.lock"
	defaultRecommendLimit = 5
	maxRecommendLimit     = 50
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
	envAPIKey             = "OMDB_API_KEY"
	envDataDir            = "MOVIEMATCH_DATA_DIR"
	envLogLevel           = "MOVIEMATCH_LOG_LEVEL"
	envServerBind         = "MOVIEMATCH_BIND"
)

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Data: Data{
			TitlesPath: defaultTitlesPath,
			MatrixPath: defaultMatrixPath,
		},
		OMDb: OMDb{
			BaseURL:        defaultOMDbBaseURL,
			PlaceholderURL: defaultPlaceholderURL,
			TimeoutSeconds: defaultOMDbTimeout,

			BreakerFailures:        defaultBreakerFails,
			BreakerCooldownSeconds: defaultBreakerCool,
		},
		Cache: Cache{
			Backend:  CacheBackendSQLite,
			Path:     defaultCachePath,
			TTLHours: defaultCacheTTLHours,
		},
		Server: Server{
			Bind:               defaultServerBind,
			RateLimitPerMinute: defaultRateLimit,
			LockPath:           defaultLockPath,
		},
		Recommend: Recommend{
			Limit: defaultRecommendLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// CacheTTL returns the response cache expiry as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// BreakerCooldown returns how long lookups pause once the breaker opens.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.OMDb.BreakerCooldownSeconds) * time.Second
}

// OMDbTimeout returns the metadata request timeout as a duration.
func (c *Config) OMDbTimeout() time.Duration {
	return time.Duration(c.OMDb.TimeoutSeconds) * time.Second
}
