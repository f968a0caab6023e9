// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default values.
const (
	DefaultPort            = 8080
	DefaultConfigFile      = "todo.toml"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = time.Minute
	DefaultShutdownTimeout = 5 * time.Second
	DefaultDBPort          = 5432
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultSlowThreshold   = time.Second
)

// Config holds the full configuration for the API server.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int      `toml:"port"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig holds the Postgres connection and pool settings.
type DatabaseConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	Username        string   `toml:"username"`
	Password        string   `toml:"password"`
	Database        string   `toml:"database"`
	Schema          string   `toml:"schema"`
	SSLMode         string   `toml:"sslmode"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold"`
	AutoMigrate     bool     `toml:"auto_migrate"`
}

// DSN builds a key/value Postgres connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Caller bool   `toml:"caller"`
}

// Duration wraps time.Duration so it can be written as "5s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     Duration{DefaultReadTimeout},
			WriteTimeout:    Duration{DefaultWriteTimeout},
			IdleTimeout:     Duration{DefaultIdleTimeout},
			ShutdownTimeout: Duration{DefaultShutdownTimeout},
			AllowedOrigins:  []string{"https://*", "http://*"},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            DefaultDBPort,
			SSLMode:         "disable",
			MaxIdleConns:    DefaultMaxIdleConns,
			MaxOpenConns:    DefaultMaxOpenConns,
			ConnMaxLifetime: Duration{DefaultConnMaxLifetime},
			SlowThreshold:   Duration{DefaultSlowThreshold},
			AutoMigrate:     true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from, in increasing priority:
// 1. Defaults
// 2. The TOML file at path (or TODO_CONFIG, or ./todo.toml when present)
// 3. Environment variables, after loading .env if one exists
//
// An explicitly named config file must exist; the implicit ./todo.toml
// is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	required := true
	if path == "" {
		path = os.Getenv("TODO_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
		required = false
	}
	if err := loadFile(cfg, path, required); err != nil {
		return nil, err
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overrides config from environment variables. The database
// variable names are the ones the deployment already provides.
func loadFromEnv(cfg *Config) error {
	var errs []error

	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	setInt("PORT", &cfg.Server.Port)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString("BLUEPRINT_DB_HOST", &cfg.Database.Host)
	setInt("BLUEPRINT_DB_PORT", &cfg.Database.Port)
	setString("BLUEPRINT_DB_USERNAME", &cfg.Database.Username)
	setString("BLUEPRINT_DB_PASSWORD", &cfg.Database.Password)
	setString("BLUEPRINT_DB_DATABASE", &cfg.Database.Database)
	setString("BLUEPRINT_DB_SCHEMA", &cfg.Database.Schema)
	setString("BLUEPRINT_DB_SSLMODE", &cfg.Database.SSLMode)
	setBool("DB_AUTO_MIGRATE", &cfg.Database.AutoMigrate)

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port %d out of range", c.Database.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("database.max_idle_conns exceeds max_open_conns"))
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text, json or logfmt", c.Log.Format))
	}
	return errors.Join(errs...)
}
