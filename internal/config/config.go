// Package config provides configuration management for the catalog admin panel
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime configuration
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port          string
	Mode          string
	ReadTimeout   int
	WriteTimeout  int
	SweepInterval time.Duration
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTSecret    string
	TokenExpiry  time.Duration
	CookieName   string
	CookieSecure bool
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

// CatalogConfig holds the catalog API connection
type CatalogConfig struct {
	BaseURL            string
	Token              string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Source looks up a configuration value by key
type Source func(key string) string

// Load reads the configuration from the environment
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration from src and validates it
func LoadFrom(src Source) (*Config, error) {
	s := source{src}

	cfg := &Config{
		Server: ServerConfig{
			Port:          s.GetWithDefault("SERVER_PORT", "8090"),
			Mode:          s.GetWithDefault("SERVER_MODE", "debug"),
			ReadTimeout:   s.GetInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:  s.GetInt("SERVER_WRITE_TIMEOUT", 30),
			SweepInterval: s.GetDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:    s.Get("JWT_SECRET"),
			TokenExpiry:  time.Duration(s.GetInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
			CookieName:   s.GetWithDefault("SESSION_COOKIE", "catalog_admin_session"),
			CookieSecure: s.GetBool("SESSION_COOKIE_SECURE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitString(s.GetWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8090")),
			AllowCredentials: s.GetBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Database: databaseFrom(s),
		Catalog: CatalogConfig{
			BaseURL:            s.Get("CATALOG_API_URL"),
			Token:              s.Get("CATALOG_API_TOKEN"),
			Username:           s.Get("CATALOG_API_USER"),
			Password:           s.Get("CATALOG_API_PASSWORD"),
			Timeout:            s.GetDuration("CATALOG_API_TIMEOUT", 15*time.Second),
			InsecureSkipVerify: s.GetBool("CATALOG_API_INSECURE", false),
		},
		Log: logFrom(s),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings. Maintenance commands
// use it since they never talk to the catalog API.
func LoadDatabase() (*DatabaseConfig, error) {
	return LoadDatabaseFrom(os.Getenv)
}

// LoadDatabaseFrom reads the database settings from src
func LoadDatabaseFrom(src Source) (*DatabaseConfig, error) {
	db := databaseFrom(source{src})
	if err := db.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &db, nil
}

// LoadLog reads the logging settings from the environment
func LoadLog() LogConfig {
	return logFrom(source{os.Getenv})
}

func logFrom(s source) LogConfig {
	return LogConfig{
		Level:  strings.ToLower(s.GetWithDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(s.GetWithDefault("LOG_FORMAT", "json")),
	}
}

func databaseFrom(s source) DatabaseConfig {
	db := DatabaseConfig{
		Driver:   strings.ToLower(s.GetWithDefault("DB_DRIVER", "postgres")),
		URL:      s.Get("DATABASE_URL"),
		Host:     s.GetWithDefault("DB_HOST", "localhost"),
		Port:     s.Get("DB_PORT"),
		User:     s.GetWithDefault("DB_USER", "catalog_admin"),
		Password: s.Get("DB_PASSWORD"),
		Name:     s.GetWithDefault("DB_NAME", "catalog_admin"),
		SSLMode:  s.GetWithDefault("DB_SSLMODE", "disable"),
		MaxOpen:  s.GetInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdle:  s.GetInt("DB_MAX_IDLE_CONNS", 5),
	}
	if db.Port == "" {
		db.Port = defaultPort(db.Driver)
	}
	return db
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case "postgres", "mysql":
		return nil
	}
	return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", d.Driver)
}

// Validate checks required settings
func (c *Config) Validate() error {
	var problems []string

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("SERVER_MODE must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required in release mode")
	}
	if c.Catalog.BaseURL == "" {
		problems = append(problems, "CATALOG_API_URL is required")
	}
	if err := c.Database.validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Auth.TokenExpiry <= 0 {
		problems = append(problems, "JWT_EXPIRY_HOURS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsRelease reports whether the server runs in release mode
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func defaultPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}

type source struct {
	lookup Source
}

// Get returns a config value by key
func (s source) Get(key string) string {
	return strings.TrimSpace(s.lookup(key))
}

// GetWithDefault returns a config value or default if not found
func (s source) GetWithDefault(key, defaultValue string) string {
	if val := s.Get(key); val != "" {
		return val
	}
	return defaultValue
}

// GetInt returns a config value as int
func (s source) GetInt(key string, defaultValue int) int {
	val := s.Get(key)
	if val == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	return defaultValue
}

// GetBool returns a config value as bool
func (s source) GetBool(key string, defaultValue bool) bool {
	val := s.Get(key)
	if val == "" {
		return defaultValue
	}
	return val == "true" || val == "1" || val == "yes"
}

// GetDuration returns a config value as duration ("30s", "5m")
func (s source) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := s.Get(key)
	if val == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

// splitString splits a comma-separated string into a slice
func splitString(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
