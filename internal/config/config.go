package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

const defaultJWTSecret = "secret"

// LevelForEnvironment maps APP_ENV onto a logrus level
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	Environment string `json:"environment"`

	// Server Configuration
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Catalog cache
	RedisURL        string        `json:"redis_url"`
	CatalogCacheTTL time.Duration `json:"catalog_cache_ttl"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret    string        `json:"jwt_secret"`
	JWTExpiresIn time.Duration `json:"jwt_expires_in"`

	// Bootstrap data
	SeedCatalog   bool   `json:"seed_catalog"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	AdminName     string `json:"admin_name"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, RedisURL: %s, CatalogCacheTTL: %s, LogLevel: %s, JWTSecret: [REDACTED], JWTExpiresIn: %s, SeedCatalog: %t, AdminEmail: %s}",
		c.Environment, c.Port, c.Host, maskURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath,
		maskURL(c.RedisURL), c.CatalogCacheTTL, c.LogLevel, c.JWTExpiresIn, c.SeedCatalog, c.AdminEmail)
}

// maskURL masks the password in a connection URL
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "REDACTED")
		}
	}

	return parsed.String()
}

// Database returns the connection settings for database.InitDatabase
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// Address is the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL and JWTSecret
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	jwtExpiresIn, err := time.ParseDuration(GetEnvWithDefault("JWT_EXPIRES_IN", "168h"))
	if err != nil || jwtExpiresIn <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: must be a positive duration such as 24h")
	}

	config := &Config{
		Environment:     GetEnvWithDefault("APP_ENV", "development"),
		Port:            port,
		Host:            GetEnvWithDefault("APP_HOST", "localhost"),
		CORSOrigins:     splitList(GetEnvWithDefault("CORS_ORIGIN", "http://localhost:3000")),
		DatabaseURL:     dbURL,
		DBDriver:        strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBHost:          GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:          GetEnvWithDefault("DB_PORT", "5432"),
		DBName:          GetEnvWithDefault("DB_NAME", "pizzashop"),
		DBUser:          GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:      GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:       GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:          GetEnvWithDefault("DB_PATH", "pizzashop.sqlite"),
		RedisURL:        GetEnvWithDefault("REDIS_URL", ""),
		CatalogCacheTTL: GetEnvAsType("CATALOG_CACHE_TTL", 5*time.Minute),
		LogLevel:        GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:       GetEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn:    jwtExpiresIn,
		SeedCatalog:     GetEnvAsType("SEED_CATALOG", true),
		AdminEmail:      GetEnvWithDefault("ADMIN_EMAIL", ""),
		AdminPassword:   GetEnvWithDefault("ADMIN_PASSWORD", ""),
		AdminName:       GetEnvWithDefault("ADMIN_NAME", "Administrator"),
	}

	if dbURL != "" && config.DBDriver == "sqlite" {
		config.DBDriver = "postgres"
	}

	if config.Environment == "production" && config.JWTSecret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	if (config.AdminEmail == "") != (config.AdminPassword == "") {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
