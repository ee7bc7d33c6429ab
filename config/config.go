package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from its environment.
type Config struct {
	Port      string
	DBPath    string
	RedisAddr string
	CacheTTL  time.Duration
	Debug     bool
}

// Load reads configuration from an optional .env file and the process
// environment. Every setting has a default; only a malformed value is an
// error.
func Load() (Config, error) {
	_ = godotenv.Load() // .env file is optional

	cfg := Config{
		Port:      getEnvOrDefault("PORT", "3000"),
		DBPath:    getEnvOrDefault("DB_PATH", "todos.db"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  30 * time.Second,
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: must be greater than zero")
		}
		cfg.CacheTTL = d
	}

	if v := os.Getenv("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = dbg
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
