package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DataDir string
	Stores  StoreConfig
	Doc     DocumentConfig
	Shift   ShiftConfig
}

// StoreConfig holds the paths of the four independent SQLite stores
type StoreConfig struct {
	Products   string
	Orders     string
	Deliveries string
	Production string
	Silent     bool // suppress gorm query logging
}

// DocumentConfig holds delivery-note document settings
type DocumentConfig struct {
	NotePrefix string // note number prefix, e.g. "DRK"
	Language   string // "hu" or "de"
}

// ShiftConfig holds production-shift evaluation settings
type ShiftConfig struct {
	LengthHours   float64 // nominal shift length in hours
	GoodThreshold float64 // performance >= this is "good"
	WarnThreshold float64 // performance >= this is "warning"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		DataDir: dataDir,
		Stores: StoreConfig{
			Products:   getEnv("PRODUCT_DB", filepath.Join(dataDir, "products.db")),
			Orders:     getEnv("ORDER_DB", filepath.Join(dataDir, "orders.db")),
			Deliveries: getEnv("DELIVERY_DB", filepath.Join(dataDir, "delivery_notes.db")),
			Production: getEnv("MANU_DB", filepath.Join(dataDir, "production_inventory.db")),
			Silent:     getEnv("DB_SILENT", "true") == "true",
		},
		Doc: DocumentConfig{
			NotePrefix: getEnv("NOTE_PREFIX", "DRK"),
			Language:   getEnv("DOC_LANG", "hu"),
		},
		Shift: ShiftConfig{
			LengthHours:   getEnvFloat("SHIFT_LENGTH_HOURS", 8),
			GoodThreshold: getEnvFloat("PERF_GOOD_THRESHOLD", 0.80),
			WarnThreshold: getEnvFloat("PERF_WARN_THRESHOLD", 0.60),
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
