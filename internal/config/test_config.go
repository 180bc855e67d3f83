package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from the .env file or environment variables.
// If TEST_DB_* variables are not set, the returned Config has an empty Database section,
// which tells the integration tests to start their own MySQL container.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file from the project root (optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.JWT.Secret = os.Getenv("TEST_JWT_SECRET")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "integration-test-secret"
	}

	cfg.Content.MaxFileSize = 10000000
	cfg.Content.AllowedExtensions = []string{"mp4", "mkv"}
	cfg.Content.UploadWorkers = 1
	cfg.Content.MaxAppendAttempts = 20

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		return cfg, nil
	}

	dbPort, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
	}
	if cfg.Database.User == "" || cfg.Database.DBName == "" {
		return nil, fmt.Errorf("TEST_DB_USER and TEST_DB_NAME are required when TEST_DB_HOST is set")
	}

	return cfg, nil
}
