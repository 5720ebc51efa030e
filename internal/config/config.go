package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	PrimaryDSN      string
	ReplicaDSNs     []string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	GlobalRequests int
	AuthRequests   int
	Window         time.Duration
}

func Load() (*Config, error) {
	// Load .env if it exists (local dev), ignore if not (container env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Env:  getEnv("APP_ENV", "production"),
		},
		Database: DatabaseConfig{
			PrimaryDSN:      getEnv("DB_PRIMARY_DSN", ""),
			ReplicaDSNs:     splitNonEmpty(getEnv("DB_REPLICA1_DSN", ""), getEnv("DB_REPLICA2_DSN", "")),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TOKEN_TTL", 7*24*time.Hour),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 300*time.Second),
		},
		RateLimit: RateLimitConfig{
			GlobalRequests: getEnvAsInt("RATE_LIMIT_GLOBAL_REQUESTS", 100),
			AuthRequests:   getEnvAsInt("RATE_LIMIT_AUTH_REQUESTS", 20),
			Window:         getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	return cfg, nil
}

func splitNonEmpty(dsns ...string) []string {
	out := make([]string, 0, len(dsns))
	for _, dsn := range dsns {
		if dsn != "" {
			out = append(out, dsn)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
