// Package config provides application configuration loading and management.
//
// Values come from, in order of precedence:
//  1. environment variables (PORT=4000)
//  2. an optional config.yml in the working directory
//  3. the defaults below
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/postboard/internal/auth"
)

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port          int    `mapstructure:"PORT"`
	DataDir       string `mapstructure:"DATA_DIR"`
	UsersFile     string `mapstructure:"USERS_FILE"`
	PostsFile     string `mapstructure:"POSTS_FILE"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DBPath        string `mapstructure:"DB_PATH"`
	BcryptCost    int    `mapstructure:"BCRYPT_COST"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	Env           string `mapstructure:"APP_ENV"`
}

// Load reads configuration from the environment and ./config.yml.
func Load() (*Config, error) {
	return load(".")
}

// load is Load with explicit search paths for config.yml.
func load(paths ...string) (*Config, error) {
	// A private instance, not the viper global: tests can call this repeatedly
	// without leaking state into each other.
	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	v.SetDefault("PORT", 3000)
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("USERS_FILE", "users.json")
	v.SetDefault("POSTS_FILE", "posts.json")
	v.SetDefault("STORAGE_DRIVER", DriverJSON)
	v.SetDefault("DB_PATH", "data/postboard.db")
	v.SetDefault("BCRYPT_COST", auth.DefaultCost)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_ENV", "development")

	if err := v.ReadInConfig(); err != nil {
		// The file is optional; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate ensures that configuration values are usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	switch c.StorageDriver {
	case DriverJSON:
		if c.UsersFile == "" || c.PostsFile == "" {
			return errors.New("USERS_FILE and POSTS_FILE are required for the json driver")
		}
		if c.UsersPath() == c.PostsPath() {
			return errors.New("USERS_FILE and POSTS_FILE must be different files")
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverJSON, DriverSQLite, c.StorageDriver)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}

	return nil
}

// UsersPath is where the JSON driver keeps users.
func (c *Config) UsersPath() string {
	return c.resolve(c.UsersFile)
}

// PostsPath is where the JSON driver keeps posts.
func (c *Config) PostsPath() string {
	return c.resolve(c.PostsFile)
}

// resolve places a relative file name under DataDir.
func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// SlogLevel parses LOG_LEVEL.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
