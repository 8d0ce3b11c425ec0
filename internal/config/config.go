package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIBaseURL = "https://api.redseam.redberryinternship.ge/api"

type Config struct {
	APIBaseURL  string
	StateDir    string
	RedisAddr   string
	HTTPTimeout time.Duration
	Env         string
}

// Load reads a local .env when present and falls back to process
// environment variables.
func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("error loading .env file:", err)
		}
	}

	return &Config{
		APIBaseURL:  getEnv("STOREFRONT_API_URL", defaultAPIBaseURL),
		StateDir:    getEnv("STOREFRONT_STATE_DIR", defaultStateDir()),
		RedisAddr:   getEnv("STOREFRONT_REDIS_ADDR", ""),
		HTTPTimeout: getDuration("STOREFRONT_HTTP_TIMEOUT", 15*time.Second),
		Env:         getEnv("STOREFRONT_ENV", "development"),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
