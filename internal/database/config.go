package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DatabaseConfig describes where the shop keeps its catalog, orders and accounts
type DatabaseConfig struct {
	// postgres or sqlite
	Driver string

	// URL is a full postgres connection URL and overrides the discrete fields
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// Path is the sqlite file, ":memory:" in tests
	Path string

	// Attempts is how many times InitDatabase dials before giving up, 5 when zero
	Attempts int
}

// String masks credentials so the config can be logged
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, URL: [REDACTED], Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

func (c *DatabaseConfig) kind() string {
	switch strings.ToLower(c.Driver) {
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "":
		return "sqlite"
	}
	return ""
}

// DSN is the driver specific connection string, empty for unknown drivers
func (c *DatabaseConfig) DSN() string {
	switch c.kind() {
	case "postgres":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case "sqlite":
		return c.Path
	}
	return ""
}

func (c *DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch c.kind() {
	case "postgres":
		return postgres.Open(c.DSN()), nil
	case "sqlite":
		return sqlite.Open(c.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", c.Driver)
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// sqlite serialises writers, so more than one open connection only produces
// "database is locked" errors under concurrent checkouts
func (c *DatabaseConfig) pool() poolSettings {
	if c.kind() == "sqlite" {
		return poolSettings{maxOpen: 1, maxIdle: 1, maxLifetime: 0}
	}
	return poolSettings{maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute}
}
