package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	CDW         DatabaseConfig
	Snapshots   DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	OTEL        OTELConfig
	Upstreams   UpstreamConfig
	Collector   CollectorConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Schema   string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// UpstreamConfig holds the locations of every upstream facility source
type UpstreamConfig struct {
	ArcGISHealthURL     string
	ArcGISBenefitsURL   string
	ArcGISCemeteriesURL string
	AccessToCareURL     string
	AccessToPwtURL      string
	StateCemeteriesURL  string
	WebsitesCSVPath     string
	Timeout             time.Duration
}

// CollectorConfig holds batch collection settings
type CollectorConfig struct {
	Domains           []string
	HealthCheckTTL    time.Duration
	LatestResultTTL   time.Duration
	IdempotencyTTL    time.Duration
	FacilityCacheTTL  time.Duration
	SearchCacheTTL    time.Duration
	Interval          time.Duration
	PersistSnapshots  bool
	IndexSearch       bool
	CacheLatestResult bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		CDW: DatabaseConfig{
			Host:     getEnv("CDW_HOST", "localhost"),
			Port:     getEnvAsInt("CDW_PORT", 5432),
			User:     getEnv("CDW_USER", "postgres"),
			Password: getEnv("CDW_PASSWORD", ""),
			Database: getEnv("CDW_NAME", "cdw"),
			SSLMode:  getEnv("CDW_SSLMODE", "disable"),
			Schema:   getEnv("CDW_SCHEMA", "app"),
		},
		Snapshots: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "facilities"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Schema:   getEnv("DB_SCHEMA", "public"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "facilities-collector"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Upstreams: UpstreamConfig{
			ArcGISHealthURL:     getEnv("ARCGIS_HEALTH_URL", ""),
			ArcGISBenefitsURL:   getEnv("ARCGIS_BENEFITS_URL", ""),
			ArcGISCemeteriesURL: getEnv("ARCGIS_CEMETERIES_URL", ""),
			AccessToCareURL:     getEnv("ACCESS_TO_CARE_URL", ""),
			AccessToPwtURL:      getEnv("ACCESS_TO_PWT_URL", ""),
			StateCemeteriesURL:  getEnv("STATE_CEMETERIES_URL", ""),
			WebsitesCSVPath:     getEnv("WEBSITES_CSV_PATH", "websites.csv"),
			Timeout:             getEnvAsDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Collector: CollectorConfig{
			Domains:           getEnvAsList("COLLECTOR_DOMAINS", nil),
			HealthCheckTTL:    getEnvAsDuration("HEALTH_CHECK_TTL", 5*time.Minute),
			LatestResultTTL:   getEnvAsDuration("LATEST_RESULT_TTL", 24*time.Hour),
			IdempotencyTTL:    getEnvAsDuration("IDEMPOTENCY_TTL", time.Hour),
			FacilityCacheTTL:  getEnvAsDuration("FACILITY_CACHE_TTL", 10*time.Minute),
			SearchCacheTTL:    getEnvAsDuration("SEARCH_CACHE_TTL", time.Minute),
			Interval:          getEnvAsDuration("COLLECTOR_INTERVAL", 0),
			PersistSnapshots:  getEnvAsBool("PERSIST_SNAPSHOTS", false),
			IndexSearch:       getEnvAsBool("INDEX_SEARCH", false),
			CacheLatestResult: getEnvAsBool("CACHE_LATEST_RESULT", true),
		},
	}

	if cfg.Upstreams.Timeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be greater than zero")
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
