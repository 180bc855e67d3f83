// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Blob store providers
const (
	BlobProviderDrive = "drive"
	BlobProviderGCS   = "gcs"
	BlobProviderS3    = "s3"
	BlobProviderLocal = "local"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Blob     BlobConfig
	Content  ContentConfig
	Orphans  OrphanConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port    int
	BaseURL string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// BlobConfig selects and configures the external blob store
type BlobConfig struct {
	Provider string

	// Google Drive
	DriveCredentialsFile string
	DriveCredentialsJSON string
	DriveFolderID        string

	// Google Cloud Storage
	GCSBucket    string
	GCSCDNDomain string

	// S3-compatible storage
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	S3PublicBaseURL   string

	// Local filesystem
	MediaBasePath string
	MediaBaseURL  string
}

// ContentConfig holds course content ingestion limits
type ContentConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
	UploadWorkers     int
	UploadTimeout     time.Duration
	MaxRequestSize    int64
	MaxAppendAttempts int
}

// OrphanConfig holds orphan reporting settings
type OrphanConfig struct {
	QueueEnabled  bool
	SweepSchedule string
	SweepMinAge   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	cfg.Server.BaseURL = os.Getenv("BASE_URL")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWT.RefreshTokenExpiry, err = durationEnv("JWT_REFRESH_TOKEN_EXPIRY", 168*time.Hour)
	if err != nil {
		return nil, err
	}

	// Redis configuration (used by the orphan queue)
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	cfg.Redis.DB, err = intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	if err := loadBlobConfig(cfg); err != nil {
		return nil, err
	}
	if err := loadContentConfig(cfg); err != nil {
		return nil, err
	}

	// Orphan reporting configuration
	cfg.Orphans.QueueEnabled = os.Getenv("ORPHAN_QUEUE_ENABLED") == "true"
	cfg.Orphans.SweepSchedule = os.Getenv("ORPHAN_SWEEP_SCHEDULE")
	if cfg.Orphans.SweepSchedule == "" {
		cfg.Orphans.SweepSchedule = "@hourly"
	}
	cfg.Orphans.SweepMinAge, err = durationEnv("ORPHAN_SWEEP_MIN_AGE", time.Hour)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadBlobConfig reads the blob store settings and validates the ones required by the selected provider
func loadBlobConfig(cfg *Config) error {
	provider := strings.ToLower(os.Getenv("BLOB_PROVIDER"))
	if provider == "" {
		provider = BlobProviderDrive // default, matches the production deployment
	}
	cfg.Blob.Provider = provider

	cfg.Blob.DriveCredentialsFile = os.Getenv("DRIVE_CREDENTIALS_FILE")
	cfg.Blob.DriveCredentialsJSON = os.Getenv("DRIVE_CREDENTIALS_JSON")
	cfg.Blob.DriveFolderID = os.Getenv("DRIVE_FOLDER_ID")

	cfg.Blob.GCSBucket = os.Getenv("GCS_BUCKET")
	cfg.Blob.GCSCDNDomain = os.Getenv("GCS_CDN_DOMAIN")

	cfg.Blob.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.Blob.S3Region = os.Getenv("S3_REGION")
	cfg.Blob.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.Blob.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.Blob.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.Blob.S3UsePathStyle = os.Getenv("S3_USE_PATH_STYLE") == "true"
	cfg.Blob.S3PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")

	cfg.Blob.MediaBasePath = os.Getenv("MEDIA_BASE_PATH")
	cfg.Blob.MediaBaseURL = os.Getenv("MEDIA_BASE_URL")
	if cfg.Blob.MediaBaseURL == "" {
		cfg.Blob.MediaBaseURL = cfg.Server.BaseURL
	}

	switch provider {
	case BlobProviderDrive:
		if cfg.Blob.DriveCredentialsFile == "" && cfg.Blob.DriveCredentialsJSON == "" {
			return fmt.Errorf("DRIVE_CREDENTIALS_FILE or DRIVE_CREDENTIALS_JSON is required")
		}
		if cfg.Blob.DriveFolderID == "" {
			return fmt.Errorf("DRIVE_FOLDER_ID is required")
		}
	case BlobProviderGCS:
		if cfg.Blob.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required")
		}
	case BlobProviderS3:
		if cfg.Blob.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	case BlobProviderLocal:
		if cfg.Blob.MediaBasePath == "" {
			return fmt.Errorf("MEDIA_BASE_PATH is required")
		}
	default:
		return fmt.Errorf("invalid BLOB_PROVIDER: %s", provider)
	}

	return nil
}

// loadContentConfig reads the ingestion limits
func loadContentConfig(cfg *Config) error {
	var err error

	cfg.Content.MaxFileSize, err = int64Env("CONTENT_MAX_FILE_SIZE", 10000000)
	if err != nil {
		return err
	}

	cfg.Content.AllowedExtensions = splitList(strings.ToLower(os.Getenv("CONTENT_ALLOWED_EXTENSIONS")))
	if len(cfg.Content.AllowedExtensions) == 0 {
		cfg.Content.AllowedExtensions = []string{"mp4", "mkv"}
	}

	cfg.Content.UploadWorkers, err = intEnv("CONTENT_UPLOAD_WORKERS", 1)
	if err != nil {
		return err
	}
	if cfg.Content.UploadWorkers < 1 {
		return fmt.Errorf("CONTENT_UPLOAD_WORKERS must be at least 1")
	}

	cfg.Content.UploadTimeout, err = durationEnv("CONTENT_UPLOAD_TIMEOUT", 2*time.Minute)
	if err != nil {
		return err
	}

	cfg.Content.MaxRequestSize, err = int64Env("CONTENT_MAX_REQUEST_SIZE", 200*1024*1024)
	if err != nil {
		return err
	}

	cfg.Content.MaxAppendAttempts, err = intEnv("CONTENT_MAX_APPEND_ATTEMPTS", 5)
	if err != nil {
		return err
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func intEnv(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func int64Env(key string, def int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
