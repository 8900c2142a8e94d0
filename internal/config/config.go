package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisEnabled  bool
	CacheTTL      time.Duration

	// JWT (admin routes)
	JWTSecret string
	JWTExpiry time.Duration

	// Facebook sync
	FacebookWebhookSecret string
	SyncStrictMode        bool

	// Server
	ServerPort string
	GinMode    string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "association"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisEnabled:  getEnvBool("REDIS_ENABLED", true),
		CacheTTL:      parseDuration(getEnv("CACHE_TTL", "5m"), 5*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-here"),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),

		FacebookWebhookSecret: getEnv("FACEBOOK_WEBHOOK_SECRET", ""),
		SyncStrictMode:        getEnvBool("SYNC_STRICT_MODE", false),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	valueBool, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return valueBool
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return duration
}
