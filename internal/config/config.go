// Package config loads runtime settings for the API.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then environment variables (a .env file in the working directory is loaded
// automatically).
//
// Config file locations (first match wins):
//  1. the path passed to Load (the --config flag)
//  2. $TODO_API_CONFIG
//  3. ./todo-api.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "todo-api.yaml"

type Config struct {
	Port        int            `yaml:"port"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Database    DatabaseConfig `yaml:"database"`
	Cache       CacheConfig    `yaml:"cache"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Schema     string `yaml:"schema"`
	SQLitePath string `yaml:"sqlite_path"`
	// LogLevel is one of silent, error, warn, info.
	LogLevel string `yaml:"log_level"`
}

// CacheConfig configures the Redis response cache. An empty RedisAddr
// disables caching.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Port:        8080,
		CORSOrigins: []string{"http://localhost:3000"},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			SQLitePath: "todo.db",
			LogLevel:   "warn",
		},
		Cache: CacheConfig{
			Prefix: "todo-api:",
			TTL:    5 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment. It returns the path of the file that was read, if any.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	if path == "" {
		path = findConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func findConfigPath() string {
	if p := os.Getenv("TODO_API_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "BLUEPRINT_DB_HOST")
	setString(&c.Database.Port, "BLUEPRINT_DB_PORT")
	setString(&c.Database.Username, "BLUEPRINT_DB_USERNAME")
	setString(&c.Database.Password, "BLUEPRINT_DB_PASSWORD")
	setString(&c.Database.Name, "BLUEPRINT_DB_DATABASE")
	setString(&c.Database.Schema, "BLUEPRINT_DB_SCHEMA")
	setString(&c.Database.SQLitePath, "DB_SQLITE_PATH")
	setString(&c.Database.LogLevel, "DB_LOG_LEVEL")

	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Cache.Prefix, "CACHE_PREFIX")
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.Cache.RedisDB = db
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		c.Cache.TTL = ttl
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	switch c.Database.LogLevel {
	case "silent", "error", "warn", "info":
	default:
		errs = append(errs, fmt.Errorf("unsupported database log level %q", c.Database.LogLevel))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("at least one CORS origin is required"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
