package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port               string
	Origin             string
	Environment        string
	SessionSecret      string
	SessionIdleMinutes int
	Database           DatabaseConfig
	// MessageKey is the raw 32-byte AES-256 key used for the message vault.
	// The default matches the key the seed tooling encrypts sample data with
	// and is NOT suitable for production use.
	MessageKey string
	AuditDir   string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medilink"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	sessionIdleMinutes, err := strconv.Atoi(getEnv("SESSION_IDLE_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_MINUTES: %w", err)
	}

	messageKey := getEnv("MESSAGE_KEY", "0123456789abcdef0123456789abcdef")
	if len(messageKey) != 32 {
		return nil, fmt.Errorf("MESSAGE_KEY must be exactly 32 bytes, got %d", len(messageKey))
	}

	// Return complete configuration
	return &Config{
		Port:               getEnv("PORT", "3001"),
		Origin:             getEnv("ORIGIN", "http://localhost:5173"),
		Environment:        getEnv("APP_ENV", "development"),
		SessionSecret:      getEnv("SESSION_SECRET", "default_session_secret"),
		SessionIdleMinutes: sessionIdleMinutes,
		Database:           dbConfig,
		MessageKey:         messageKey,
		AuditDir:           getEnv("AUDIT_DIR", "audit-logs"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
