package Config

import (
	"os"
	"strconv"
)

// Config holds everything read from the environment at startup.
// Loaded once in main and treated as immutable afterwards.
type Config struct {
	// Server
	Port string

	// Auth
	JWTSecret string

	// Database
	DBDriver    string // sqlite, postgres or mysql
	DatabaseURL string // DSN for postgres/mysql
	DBPath      string // file path for sqlite

	// Optional seed admin, created on first boot when set
	AdminUsername string
	AdminPassword string

	// Avatars
	AvatarDir     string
	AvatarMaxSize int64
}

var loaded *Config

// Load reads the configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "3001"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getEnv("DB_PATH", "database.db"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AvatarDir:     getEnv("AVATAR_DIR", "Avatars"),
		AvatarMaxSize: getEnvInt64("AVATAR_MAX_SIZE", 8<<20),
	}
	loaded = cfg
	return cfg
}

// Get returns the last loaded configuration, loading it on first use.
func Get() *Config {
	if loaded == nil {
		return Load()
	}
	return loaded
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
