package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is the file Load reads when present.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for the insight server.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Semantic edit session configuration
	EditSessions EditSessionConfig `yaml:"edit_sessions"`

	// Startup controls how hard the server tries to reach its dependencies.
	Startup StartupConfig `yaml:"startup"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"insight"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"insightsphere"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MaxIdleConns   int32  `yaml:"max_idle_conns" env:"PGMAX_IDLE_CONNS" env-default:"2"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// EditSessionConfig holds semantic edit session settings.
type EditSessionConfig struct {
	// TTLMinutes is how long an untouched edit session stays valid.
	TTLMinutes int `yaml:"ttl_minutes" env:"EDIT_SESSION_TTL_MINUTES" env-default:"30"`
	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int `yaml:"max_sessions" env:"EDIT_SESSION_MAX" env-default:"1000"`
}

// TTL returns the session lifetime as a duration.
func (c EditSessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// StartupConfig holds dependency connection retry settings.
type StartupConfig struct {
	ConnectRetries       int `yaml:"connect_retries" env:"STARTUP_CONNECT_RETRIES" env-default:"5"`
	ConnectDelayMillis   int `yaml:"connect_delay_ms" env:"STARTUP_CONNECT_DELAY_MS" env-default:"500"`
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds" env:"SHUTDOWN_GRACE_SECONDS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// When config.yaml does not exist, configuration comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultConfigPath, version)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.EditSessions.TTLMinutes <= 0 {
		return fmt.Errorf("edit_sessions.ttl_minutes must be positive, got %d", c.EditSessions.TTLMinutes)
	}
	if c.EditSessions.MaxSessions < 0 {
		return fmt.Errorf("edit_sessions.max_sessions must not be negative, got %d", c.EditSessions.MaxSessions)
	}
	if c.Startup.ConnectRetries < 0 {
		return fmt.Errorf("startup.connect_retries must not be negative, got %d", c.Startup.ConnectRetries)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// IsLocal reports whether the server runs in the local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the database as a postgres:// URL, the form golang-migrate expects.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
