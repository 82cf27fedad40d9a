package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/anvilworks/cms-api/services"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	Moderation services.ModerationConfig
	Dispatcher services.DispatcherConfig

	ThreadCacheSize int
	ThreadCacheTTL  time.Duration
}

// Load reads configuration from the environment, falling back to a local
// .env file during development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:            envOr("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Moderation:      services.DefaultModerationConfig(),
		Dispatcher:      services.DefaultDispatcherConfig(),
		ThreadCacheSize: envInt("THREAD_CACHE_SIZE", 256),
		ThreadCacheTTL:  envDuration("THREAD_CACHE_TTL", 30*time.Second),
	}

	if v := envInt("MODERATION_APPROVE_THRESHOLD", 0); v > 0 {
		cfg.Moderation.ApproveThreshold = v
	}
	if v := envInt("MODERATION_REANALYZE_LIMIT", 0); v > 0 {
		cfg.Moderation.ReanalyzeLimit = v
	}
	if os.Getenv("NOTIFICATIONS_DISABLED") == "true" {
		cfg.Dispatcher.Enabled = false
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
