// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Source      SourceConfig
	Fetch       FetchConfig
	Track       TrackConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// StorageConfig selects where raw documents and snapshots are kept
type StorageConfig struct {
	Backend string
	DataDir string
	OutDir  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// SourceConfig holds the tracking portal credentials and request parameters
type SourceConfig struct {
	BaseURL        string
	Username       string
	Password       string
	Timeout        time.Duration
	UTCOffsetHours int
	ProjectIDs     string
	SpeciesID      string
	UserAgent      string
}

// FetchConfig holds fetch orchestration configuration
type FetchConfig struct {
	Concurrency int
	MaxDepth    int
}

// TrackConfig holds track processing configuration
type TrackConfig struct {
	MinDistance float64
}

// Load reads an optional .env file and loads configuration from environment
// variables
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env: %w", err)
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("PORT", 8000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendFile),
			DataDir: getEnv("DATA_DIR", "data"),
			OutDir:  getEnv("OUT_DIR", "out"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "villrein"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("NATS_EVENTS_TOPIC", "villrein.fetch"),
		},
		Source: SourceConfig{
			BaseURL:        getEnv("API_BASE_URL", ""),
			Username:       getEnv("API_USERNAME", ""),
			Password:       getEnv("API_PASSWORD", ""),
			Timeout:        getEnvAsDuration("API_TIMEOUT", 60*time.Second),
			UTCOffsetHours: getEnvAsInt("API_UTC_OFFSET_HOURS", 1),
			ProjectIDs:     getEnv("API_PROJECT_IDS", "[124730]"),
			SpeciesID:      getEnv("API_SPECIES_ID", "3"),
			UserAgent:      getEnv("API_USER_AGENT", "villrein/1.0"),
		},
		Fetch: FetchConfig{
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 1),
			MaxDepth:    getEnvAsInt("FETCH_MAX_DEPTH", 10),
		},
		Track: TrackConfig{
			MinDistance: getEnvAsFloat("TRACK_MIN_DISTANCE", 100.0),
		},
	}

	return config, validate(config)
}

// Location returns the fixed zone the portal expects dates in
func (c SourceConfig) Location() *time.Location {
	offset := c.UTCOffsetHours * 3600
	if c.UTCOffsetHours == 1 {
		return time.FixedZone("CET", offset)
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.UTCOffsetHours), offset)
}

// RequireSource checks that the portal credentials are present
func (c Config) RequireSource() error {
	if c.Source.BaseURL == "" || c.Source.Username == "" || c.Source.Password == "" {
		return fmt.Errorf("API_BASE_URL, API_USERNAME and API_PASSWORD must be set to fetch")
	}
	return nil
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Storage.Backend != BackendFile && config.Storage.Backend != BackendPostgres {
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
	if config.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch concurrency must be positive, got %d", config.Fetch.Concurrency)
	}
	if config.Fetch.MaxDepth < 0 {
		return fmt.Errorf("fetch max depth must not be negative, got %d", config.Fetch.MaxDepth)
	}
	if config.Track.MinDistance < 0 {
		return fmt.Errorf("track min distance must not be negative, got %v", config.Track.MinDistance)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
