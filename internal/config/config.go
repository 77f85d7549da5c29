package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database configuration
	DataDir         string
	DBPath          string
	DBEncryptionKey string // optional; empty opens the store unencrypted

	// Trash retention
	TrashRetentionDays int
	JanitorInterval    time.Duration

	// Autosave write pacing (durable flushes per note)
	AutosaveRPS   int
	AutosaveBurst int

	// Backup configuration
	BackupDir           string
	BackupEncryptionKey string
	BackupInterval      time.Duration
	BackupRetentionDays int

	// Audit configuration
	AuditAsyncMode bool

	// Application settings
	Environment string
	LogLevel    string
	LogPath     string // optional file target for the structured log
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (not required in production)
	godotenv.Load()

	dataDir := getEnv("STUCK_DATA_DIR", "./data")

	config := &Config{
		DataDir:             dataDir,
		DBPath:              getEnv("STUCK_DB_PATH", filepath.Join(dataDir, "notes.db")),
		DBEncryptionKey:     getEnv("STUCK_DB_KEY", ""),
		TrashRetentionDays:  getEnvAsInt("STUCK_TRASH_RETENTION_DAYS", 30),
		JanitorInterval:     time.Duration(getEnvAsInt("STUCK_JANITOR_INTERVAL_HOURS", 6)) * time.Hour,
		AutosaveRPS:         getEnvAsInt("STUCK_AUTOSAVE_RPS", 4),
		AutosaveBurst:       getEnvAsInt("STUCK_AUTOSAVE_BURST", 8),
		BackupDir:           getEnv("STUCK_BACKUP_DIR", "./backups"),
		BackupEncryptionKey: getEnv("STUCK_BACKUP_KEY", ""),
		BackupInterval:      time.Duration(getEnvAsInt("STUCK_BACKUP_INTERVAL_HOURS", 24)) * time.Hour,
		BackupRetentionDays: getEnvAsInt("STUCK_BACKUP_RETENTION_DAYS", 30),
		AuditAsyncMode:      getEnvAsBool("STUCK_AUDIT_ASYNC_MODE", true),
		Environment:         getEnv("STUCK_ENV", "development"),
		LogLevel:            getEnv("STUCK_LOG_LEVEL", "info"),
		LogPath:             getEnv("STUCK_LOG_PATH", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate ensures configuration values are usable
func (c *Config) Validate() error {
	if c.TrashRetentionDays < 1 {
		c.TrashRetentionDays = 30
	}

	if c.AutosaveRPS < 1 {
		c.AutosaveRPS = 1
	}

	if c.AutosaveBurst < 1 {
		c.AutosaveBurst = 1
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
