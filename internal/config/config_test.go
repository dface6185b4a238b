package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TODO_API_CONFIG", "PORT", "CORS_ALLOWED_ORIGINS", "DB_DRIVER",
	"BLUEPRINT_DB_HOST", "BLUEPRINT_DB_PORT", "BLUEPRINT_DB_USERNAME",
	"BLUEPRINT_DB_PASSWORD", "BLUEPRINT_DB_DATABASE", "BLUEPRINT_DB_SCHEMA",
	"DB_SQLITE_PATH", "DB_LOG_LEVEL", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "CACHE_PREFIX", "CACHE_TTL",
}

// clearEnv blanks every variable Load reads; empty values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

// chdir switches the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo-api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, path, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, "todo-api:", cfg.Cache.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.Cache.RedisAddr)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 9090
cors_origins:
  - https://todo.example.com
database:
  driver: sqlite
  sqlite_path: /tmp/todo.db
  log_level: info
cache:
  redis_addr: localhost:6379
  ttl: 30s
`)

	cfg, used, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://todo.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/todo.db", cfg.Database.SQLitePath)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	// untouched keys keep their defaults
	assert.Equal(t, "todo-api:", cfg.Cache.Prefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 9090\n")
	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("BLUEPRINT_DB_HOST", "db.internal")
	t.Setenv("CACHE_TTL", "1m")

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 6060\n")
	t.Setenv("TODO_API_CONFIG", path)

	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 6060, cfg.Port)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad port env", env: map[string]string{"PORT": "eighty"}},
		{name: "bad ttl env", env: map[string]string{"CACHE_TTL": "soon"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "port out of range", file: "port: 70000\n"},
		{name: "malformed yaml", file: "port: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			_, _, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
