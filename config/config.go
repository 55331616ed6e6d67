package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	RoomPassword   string
	TURN           TURNConfig
	Redis          RedisConfig
}

type TURNConfig struct {
	Secret     string
	Domain     string
	Port       string
	TTLSeconds int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from the environment. The two shared secrets have
// no defaults: a server without them can neither authenticate anyone nor mint
// verifiable relay credentials, so their absence refuses startup.
func Load() (*Config, error) {
	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	origins := strings.Split(originsStr, ",")

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: origins,
		RoomPassword:   os.Getenv("ROOM_PASSWORD"),
		TURN: TURNConfig{
			Secret:     os.Getenv("TURN_SECRET"),
			Domain:     getEnv("TURN_DOMAIN", "turn.localhost"),
			Port:       getEnv("TURN_PORT", "5349"),
			TTLSeconds: getEnvInt64("TURN_TTL_SECONDS", 86400),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if cfg.RoomPassword == "" {
		return nil, errors.New("ROOM_PASSWORD is required")
	}
	if cfg.TURN.Secret == "" {
		return nil, errors.New("TURN_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
