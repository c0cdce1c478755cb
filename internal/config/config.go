package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode       string
	Port          string
	DataDir       string
	StoreDriver   string
	AdminIDs      []string
	GatewaySecret string
	Notify        NotifyConfig
	Database      DatabaseConfig
}

// NotifyConfig holds outbound notification configuration
type NotifyConfig struct {
	WebhookURL string
	Token      string
}

// DatabaseConfig holds database configuration (mysql store driver only)
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	driver := strings.TrimSpace(getEnv("STORE_DRIVER", "file"))
	if driver != "file" && driver != "mysql" {
		return nil, fmt.Errorf("invalid STORE_DRIVER: '%s' (must be 'file' or 'mysql')", driver)
	}

	adminIDs := splitList(getEnv("ADMIN_IDS", ""))
	if len(adminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS must list at least one administrator id")
	}

	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "3000"),
		DataDir:       getEnv("DATA_DIR", "data"),
		StoreDriver:   driver,
		AdminIDs:      adminIDs,
		GatewaySecret: getEnv("GATEWAY_SECRET", "default_gateway_secret"),
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Token:      getEnv("NOTIFY_WEBHOOK_TOKEN", ""),
		},
		Database: loadDatabaseConfig(),
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, STORE: %s]", appMode, driver)
	return config, nil
}

// loadDatabaseConfig loads database config for the mysql store driver
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASS", ""),
		DBName:   getEnv("DB_NAME", "asser_platform"),
	}
}

// DSN builds the mysql connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// IsAdmin reports whether id belongs to the configured administrator set
func (c *Config) IsAdmin(id string) bool {
	for _, admin := range c.AdminIDs {
		if admin == id {
			return true
		}
	}
	return false
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated env value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
