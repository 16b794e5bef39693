package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults mirror the development configuration; production deployments are
// expected to override JWT_SECRET at minimum.
const (
	DefaultAddr           = ":8080"
	DefaultJWTSecret      = "dev-secret-key-change-in-production"
	DefaultJWTAlgorithm   = "HS256"
	DefaultTokenTTL       = 24 * time.Hour
	DefaultHashMethod     = "pbkdf2:sha256"
	DefaultHashIterations = 600000
	DefaultCORSOrigins    = "*"
)

// Config holds environment-driven configuration. It is built once at
// startup and never mutated afterwards, so concurrent reads need no
// synchronization.
type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	JWTAlgorithm   string
	TokenTTL       time.Duration
	HashMethod     string
	HashIterations int
	CORSOrigins    string
}

// Load reads configuration from environment variables, falling back to
// development defaults. An empty DATABASE_URL selects the in-memory store.
func Load() Config {
	return Config{
		Addr:           getEnv("ADDR", DefaultAddr),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAlgorithm:   getEnv("JWT_ALGORITHM", DefaultJWTAlgorithm),
		TokenTTL:       getDuration("JWT_TTL", DefaultTokenTTL),
		HashMethod:     getEnv("PASSWORD_HASH_METHOD", DefaultHashMethod),
		HashIterations: getInt("PASSWORD_HASH_ITERATIONS", DefaultHashIterations),
		CORSOrigins:    getEnv("CORS_ORIGINS", DefaultCORSOrigins),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
