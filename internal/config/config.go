// Package config loads server configuration from flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Search    SearchConfig
	Server    ServerConfig
	Auth      AuthConfig
	Query     QueryConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	Driver   string // badger or sqlite
	Path     string // data directory; the store lives beneath it
	InMemory bool   // badger only, for demos and tests
}

// SearchConfig controls the free-text index.
type SearchConfig struct {
	Enabled bool
	Path    string // defaults to {storage}/search
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	// DrainTimeout bounds how long shutdown waits for in-flight requests.
	DrainTimeout   time.Duration
	AllowedOrigins []string
}

// AuthConfig holds token configuration. The symmetric key itself is loaded
// from disk by auth.LoadOrGenerateKey.
type AuthConfig struct {
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// QueryConfig bounds paging.
type QueryConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	// BatchLimit caps one related-entity batch, including reverse relations.
	BatchLimit int
}

// CacheConfig selects the process-wide cache.
type CacheConfig struct {
	Driver          string // memory or redis
	RedisURL        string
	FragmentTTL     time.Duration
	AvailabilityTTL time.Duration
	MaxCost         int64
}

// RateLimitConfig configures per-caller request limits. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	return load(fs, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	storageDriver := fs.String("storage-driver", "", "Document store driver (badger, sqlite)")
	storagePath := fs.String("data-path", "", "Base path for the document store")
	storageInMemory := fs.String("in-memory", "", "Keep the badger store in memory")

	searchEnabled := fs.String("search-enabled", "", "Enable the free-text index (default: true)")
	searchPath := fs.String("search-path", "", "Path for the free-text index")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	drainTimeout := fs.String("drain-timeout", "", "Wait for in-flight requests on shutdown (default: 30s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma separated CORS origins")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")

	defaultPageSize := fs.String("default-page-size", "", "Page size when a lookup names none (default: 20)")
	maxPageSize := fs.String("max-page-size", "", "Largest page a caller may request (default: 1000)")
	batchLimit := fs.String("batch-limit", "", "Largest related-entity batch (default: 10000)")

	cacheDriver := fs.String("cache-driver", "", "Cache driver (memory, redis)")
	redisURL := fs.String("redis-url", "", "Redis URL when cache-driver=redis")
	fragmentTTL := fs.String("fragment-ttl", "", "Authorization fragment cache lifetime (default: 5m)")
	availabilityTTL := fs.String("availability-ttl", "", "Availability cache lifetime (default: 30s)")

	rateRPS := fs.String("rate-limit-rps", "", "Requests per second per caller (default: 20)")
	rateBurst := fs.String("rate-limit-burst", "", "Burst per caller (default: 40)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env files are fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:   getConfigValue(*storageDriver, "STORAGE_DRIVER", "badger"),
			Path:     getConfigValue(*storagePath, "DATA_PATH", ""),
			InMemory: getBoolConfigValue(*storageInMemory, "STORAGE_IN_MEMORY", false),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
			Path:    getConfigValue(*searchPath, "SEARCH_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		Query: QueryConfig{
			DefaultPageSize: getIntConfigValue(*defaultPageSize, "QUERY_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getIntConfigValue(*maxPageSize, "QUERY_MAX_PAGE_SIZE", 1000),
			BatchLimit:      getIntConfigValue(*batchLimit, "QUERY_BATCH_LIMIT", 10000),
		},
		Cache: CacheConfig{
			Driver:   getConfigValue(*cacheDriver, "CACHE_DRIVER", "memory"),
			RedisURL: getConfigValue(*redisURL, "REDIS_URL", ""),
			MaxCost:  1 << 26,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(getIntConfigValue(*rateRPS, "RATE_LIMIT_RPS", 20)),
			Burst:             getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", 40),
		},
	}

	durations := []struct {
		flag, env, def string
		dst            *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*drainTimeout, "SERVER_DRAIN_TIMEOUT", "30s", &cfg.Server.DrainTimeout},
		{*fragmentTTL, "CACHE_FRAGMENT_TTL", "5m", &cfg.Cache.FragmentTTL},
		{*availabilityTTL, "CACHE_AVAILABILITY_TTL", "30s", &cfg.Cache.AvailabilityTTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.env), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Driver {
	case "badger":
	case "sqlite":
		if c.Storage.InMemory {
			return errors.New("in-memory storage is only supported by the badger driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %q (must be badger or sqlite)", c.Storage.Driver)
	}
	if c.Storage.Path == "" && !c.Storage.InMemory {
		return errors.New("data path cannot be empty")
	}

	if c.Server.DrainTimeout < 0 {
		return fmt.Errorf("drain timeout cannot be negative: %s", c.Server.DrainTimeout)
	}

	if c.Query.DefaultPageSize < 1 || c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return fmt.Errorf("invalid page bounds: default %d, max %d", c.Query.DefaultPageSize, c.Query.MaxPageSize)
	}
	if c.Query.BatchLimit < c.Query.MaxPageSize {
		return fmt.Errorf("batch limit %d is below max page size %d", c.Query.BatchLimit, c.Query.MaxPageSize)
	}

	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New("REDIS_URL is required when the cache driver is redis")
		}
	default:
		return fmt.Errorf("invalid cache driver: %q (must be memory or redis)", c.Cache.Driver)
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limits cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandPaths() error {
	if c.Storage.InMemory && c.Storage.Path == "" {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataPath, err := expandPath(c.Storage.Path, filepath.Join(homeDir, "PawHaven", "data"))
	if err != nil {
		return err
	}
	c.Storage.Path = dataPath

	searchPath, err := expandPath(c.Search.Path, filepath.Join(dataPath, "search"))
	if err != nil {
		return err
	}
	c.Search.Path = searchPath
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path. Existing variables win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path is operator supplied
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
