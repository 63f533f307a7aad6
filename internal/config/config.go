package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at startup and
// passed into every component constructor; nothing reads the environment after
// Load returns.
type Config struct {
	NodeEnv      string
	Port         string
	RestaurantID string
	Database     DatabaseConfig
	Sync         SyncConfig
	License      LicenseConfig
	Reservation  ReservationConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	DataPath string
}

// SyncConfig holds outbox sync engine configuration
type SyncConfig struct {
	Endpoint      string
	Token         string
	BatchSize     int
	FlushInterval time.Duration
	PushTimeout   time.Duration
}

// LicenseConfig holds license validation configuration
type LicenseConfig struct {
	Secret       string
	IdentityFile string
}

// ReservationConfig holds reservation scheduling configuration
type ReservationConfig struct {
	Duration  time.Duration
	PastGrace time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	restaurantID := os.Getenv("RESTAURANT_ID")
	if restaurantID == "" {
		return nil, fmt.Errorf("RESTAURANT_ID is required")
	}

	return &Config{
		NodeEnv:      getEnv("NODE_ENV", "development"),
		Port:         getEnv("PORT", "3100"),
		RestaurantID: restaurantID,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "tezpos"),
			DataPath: getEnv("PG_DATA_PATH", "./db_data"),
		},
		Sync: SyncConfig{
			Endpoint:      os.Getenv("SYNC_ENDPOINT"),
			Token:         os.Getenv("SYNC_TOKEN"),
			BatchSize:     getEnvInt("SYNC_BATCH_SIZE", 50),
			FlushInterval: getEnvDuration("SYNC_FLUSH_INTERVAL", 30*time.Second),
			PushTimeout:   getEnvDuration("SYNC_PUSH_TIMEOUT", 15*time.Second),
		},
		License: LicenseConfig{
			Secret:       os.Getenv("LICENSE_SECRET"),
			IdentityFile: getEnv("IDENTITY_FILE", ".tezpos/identity.json"),
		},
		Reservation: ReservationConfig{
			Duration:  getEnvDuration("RESERVATION_DURATION", 2*time.Hour),
			PastGrace: getEnvDuration("RESERVATION_PAST_GRACE", 5*time.Minute),
		},
	}, nil
}

// getEnv gets environment variable with default value
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
