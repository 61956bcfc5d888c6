package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DataPath              string
	SchemaPath            string
	DBPath                string
	DBDriver              string
	CacheEnabled          bool
	RedisAddr             string
	CacheTTL              time.Duration
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPPort              int
	CORSAllowedOrigins    []string
	ChartFontPath         string
	TopTerms              int
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DataPath:              getEnv("DATA_PATH", "./data/csdata.jsonl"),
		SchemaPath:            getEnv("SCHEMA_PATH", ""),
		DBPath:                getEnv("DB_PATH", ":memory:"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		CacheEnabled:          getBool("CACHE_ENABLED", true),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:              getDuration("CACHE_TTL", 10*time.Minute),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPPort:              getInt("HTTP_PORT", 8080),
		CORSAllowedOrigins:    getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ChartFontPath:         getEnv("CHART_FONT_PATH", ""),
		TopTerms:              getInt("TOP_TERMS", 50),
	}
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
