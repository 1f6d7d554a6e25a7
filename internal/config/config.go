// Package config loads tool configuration from flags, environment
// variables, and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"relq/internal/naming"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Naming   naming.Config  `mapstructure:"naming"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// ConnectionString is a complete MySQL DSN. When set, the discrete
	// host/port/user fields are ignored.
	ConnectionString string `mapstructure:"dsn"`
	// DSNFile is a path to a file containing the DSN (@- reads stdin).
	DSNFile string `mapstructure:"dsn_file"`

	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PasswordFile   string `mapstructure:"password_file"`
	PasswordPrompt bool   `mapstructure:"password_prompt"`
	Database       string `mapstructure:"database"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q (expected debug, info, warn, or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid logging.format %q (expected json or text)", c.Logging.Format)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if strings.TrimSpace(d.ConnectionString) != "" {
		return nil
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("invalid database.port %d (expected 0-65535)", d.Port)
	}
	if strings.TrimSpace(d.Database) == "" {
		return fmt.Errorf("no database configured: set database.database or database.dsn")
	}
	return nil
}

// DSN returns a MySQL-compatible data source name. A configured
// connection string is used directly; otherwise the DSN is built from the
// discrete fields. parseTime and UTC are always enabled.
func (d *DatabaseConfig) DSN() string {
	var dsn string

	if d.ConnectionString != "" {
		dsn = d.ConnectionString
		if !strings.Contains(dsn, "parseTime") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		if !strings.Contains(dsn, "loc=") {
			dsn += "&loc=UTC"
		}
		return dsn
	}

	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}
