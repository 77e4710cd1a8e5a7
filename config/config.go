// Package config provides configuration management for the vidtube application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// Values are read once at start-up; the resulting structs are treated as immutable and
// injected into the components that need them.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig represents configuration for the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxSize  int
}

// DSN returns a connection string usable by both pgx and golang-migrate.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	AccessTokenSecret    string        // Secret key for signing access tokens
	AccessTokenDuration  time.Duration // Lifetime of access tokens
	RefreshTokenSecret   string        // Secret key for signing refresh tokens
	RefreshTokenDuration time.Duration // Lifetime of refresh tokens
	CookieSecure         bool          // Sets the Secure flag on auth cookies
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string
	Environment    string // "development" or "production"
	LogLevel       string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// MediaConfig holds the media host credentials. It is built once and handed to the
// media client; nothing else reads these variables.
type MediaConfig struct {
	Driver        string // "s3" or "minio"
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // Prefix of every stored URL, e.g. https://cdn.example.com/videos
	UseSSL        bool
}

// UploadConfig controls the local scratch directory used by the upload middleware.
type UploadConfig struct {
	Dir           string
	MaxBytes      int64
	SweepInterval time.Duration
	MaxAge        time.Duration
	Timeout       time.Duration // Deadline for upload routes, replacing the request timeout
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Media    *MediaConfig
	Upload   *UploadConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvBool parses values accepted by strconv.ParseBool ("1", "true", "FALSE", ...).
func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// parseAndValidatePoolSize clamps the pool size between 5 and 100.
func parseAndValidatePoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

// splitList turns "a, b,c" into ["a" "b" "c"], dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database Configuration
	database := &DatabaseConfig{
		User:     getRequiredEnv("DB_USER", &errors),
		Password: getRequiredEnv("DB_PASSWORD", &errors),
		DBName:   getRequiredEnv("DB_NAME", &errors),
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
		SSLMode:  getOptionalEnv("DB_SSLMODE", "disable"),
	}
	database.MaxSize = parseAndValidatePoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors)

	// Auth Configuration
	authConfig := &AuthConfig{
		AccessTokenSecret:    getRequiredEnv("ACCESS_TOKEN_SECRET", &errors),
		AccessTokenDuration:  getOptionalEnvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour, &errors),
		RefreshTokenSecret:   getRequiredEnv("REFRESH_TOKEN_SECRET", &errors),
		RefreshTokenDuration: getOptionalEnvDuration("REFRESH_TOKEN_EXPIRY", 240*time.Hour, &errors), // 10 days
		CookieSecure:         getOptionalEnvBool("COOKIE_SECURE", true, &errors),
	}
	if authConfig.AccessTokenSecret != "" && authConfig.AccessTokenSecret == authConfig.RefreshTokenSecret {
		errors = append(errors, "ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8000"),
		Environment:    getOptionalEnv("APP_ENV", "production"),
		LogLevel:       getOptionalEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitList(getOptionalEnv("CORS_ORIGIN", "http://localhost:3000")),
		RequestTimeout: getOptionalEnvDuration("REQUEST_TIMEOUT", 60*time.Second, &errors),
	}

	// Media Configuration
	media := &MediaConfig{
		Driver:        strings.ToLower(getOptionalEnv("MEDIA_DRIVER", "s3")),
		Endpoint:      getOptionalEnv("MEDIA_ENDPOINT", ""),
		Region:        getOptionalEnv("MEDIA_REGION", "auto"),
		Bucket:        getRequiredEnv("MEDIA_BUCKET", &errors),
		AccessKey:     getRequiredEnv("MEDIA_ACCESS_KEY", &errors),
		SecretKey:     getRequiredEnv("MEDIA_SECRET_KEY", &errors),
		PublicBaseURL: strings.TrimRight(getRequiredEnv("MEDIA_PUBLIC_BASE_URL", &errors), "/"),
		UseSSL:        getOptionalEnvBool("MEDIA_USE_SSL", true, &errors),
	}
	switch media.Driver {
	case "s3":
	case "minio":
		if media.Endpoint == "" {
			errors = append(errors, "MEDIA_ENDPOINT is required when MEDIA_DRIVER=minio")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid value for MEDIA_DRIVER: expected s3 or minio, got '%s'", media.Driver))
	}

	// Upload Configuration
	upload := &UploadConfig{
		Dir:           getOptionalEnv("UPLOAD_DIR", "./public/temp"),
		MaxBytes:      int64(getOptionalEnvInt("UPLOAD_MAX_MB", 512, &errors)) << 20,
		SweepInterval: getOptionalEnvDuration("UPLOAD_SWEEP_INTERVAL", 10*time.Minute, &errors),
		MaxAge:        getOptionalEnvDuration("UPLOAD_MAX_AGE", time.Hour, &errors),
		Timeout:       getOptionalEnvDuration("UPLOAD_TIMEOUT", 15*time.Minute, &errors),
	}
	if upload.Timeout <= 0 {
		errors = append(errors, "UPLOAD_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Database: database,
		Auth:     authConfig,
		Server:   serverConfig,
		Media:    media,
		Upload:   upload,
	}, nil
}
