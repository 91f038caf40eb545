// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AuditConfig holds the connection settings of the purchase audit trail.
type AuditConfig struct {
	Enabled  bool
	Address  string
	Port     int
	Username string
	Password string
	Database string
}

// Config holds the full runtime configuration.
type Config struct {
	Region    string
	TableName string
	// Endpoint overrides the DynamoDB endpoint, e.g. for a local instance.
	Endpoint string

	Port      int
	JWTSecret string

	PhotoBucket  string
	PhotoBaseURL string

	// PortfolioPageSize bounds the transaction page of a portfolio read.
	PortfolioPageSize int

	Audit AuditConfig
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Region:            getEnvString("AWS_REGION", "us-east-1"),
		TableName:         getEnvString("DYNAMODB_TABLE", "Brickvest"),
		Endpoint:          getEnvString("DYNAMODB_ENDPOINT", ""),
		Port:              getEnvInt("PORT", 8080),
		JWTSecret:         getEnvString("JWT_SECRET", ""),
		PhotoBucket:       getEnvString("PHOTO_BUCKET", "brickvest-photos"),
		PhotoBaseURL:      getEnvString("PHOTO_BASE_URL", ""),
		PortfolioPageSize: getEnvInt("PORTFOLIO_PAGE_SIZE", 50),
		Audit: AuditConfig{
			Enabled:  getEnvBool("AUDIT_ENABLED", false),
			Address:  getEnvString("AUDIT_ADDRESS", "127.0.0.1"),
			Port:     getEnvInt("AUDIT_PORT", 3322),
			Username: getEnvString("AUDIT_USERNAME", "immudb"),
			Password: getEnvString("AUDIT_PASSWORD", "immudb"),
			Database: getEnvString("AUDIT_DATABASE", "defaultdb"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
