package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	OMDB      OMDBConfig
	Favorites FavoritesConfig
	Snapshot  SnapshotConfig
	Aggregate AggregateConfig
}

type ServerConfig struct {
	Env  string
	Port string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TLS      bool
}

type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// FavoritesConfig selects the persistence backend for the favorites slot.
// Backend is "redis" or "file"; File is only used by the file backend.
type FavoritesConfig struct {
	Backend string
	File    string
}

type SnapshotConfig struct {
	File string
}

// AggregateConfig bounds the outbound request rate: searches and detail
// fetches run in concurrent batches separated by a pause. These are tuning
// constants, not protocol requirements.
type AggregateConfig struct {
	SearchBatchSize int
	DetailBatchSize int
	BatchPause      time.Duration
	MaxDetails      int
	// Keywords overrides the built-in keyword list when set.
	Keywords []string
}

// Load reads environment variables and returns a Config struct
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("APP_ENV", "local"),
			Port: getEnv("PORT", "4000"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			TLS:      getEnv("REDIS_TLS", "false") == "true",
		},
		OMDB: OMDBConfig{
			APIKey:  getEnv("OMDB_API_KEY", ""),
			BaseURL: getEnv("OMDB_URL", "https://www.omdbapi.com"),
			Timeout: getEnvDuration("OMDB_TIMEOUT", 10*time.Second),
		},
		Favorites: FavoritesConfig{
			Backend: getEnv("FAVORITES_BACKEND", "file"),
			File:    getEnv("FAVORITES_FILE", "favorites.json"),
		},
		Snapshot: SnapshotConfig{
			File: getEnv("SNAPSHOT_FILE", "movies.json"),
		},
		Aggregate: AggregateConfig{
			SearchBatchSize: getEnvInt("SEARCH_BATCH_SIZE", 10),
			DetailBatchSize: getEnvInt("DETAIL_BATCH_SIZE", 20),
			BatchPause:      getEnvDuration("BATCH_PAUSE", time.Second),
			MaxDetails:      getEnvInt("MAX_DETAILS", 150),
			Keywords:        getEnvList("SEARCH_KEYWORDS"),
		},
	}

	// Validate required fields
	if cfg.OMDB.APIKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.Favorites.Backend != "redis" && cfg.Favorites.Backend != "file" {
		return nil, fmt.Errorf("FAVORITES_BACKEND must be \"redis\" or \"file\", got %q", cfg.Favorites.Backend)
	}
	if cfg.Aggregate.SearchBatchSize < 1 || cfg.Aggregate.DetailBatchSize < 1 {
		return nil, fmt.Errorf("batch sizes must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
