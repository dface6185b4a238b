package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/domain"
)

// Service owns the connection pool. Callers receive it explicitly and pass
// the *gorm.DB down to repositories; there is no package-level instance.
type Service interface {
	Health() map[string]string
	Migrate() error
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db     *gorm.DB
	driver string
	name   string
}

// New opens the store described by cfg.
func New(cfg config.DatabaseConfig) (Service, error) {
	gormConfig := &gorm.Config{
		Logger:         newLogger(cfg.LogLevel),
		TranslateError: true, // map driver errors to gorm.ErrDuplicatedKey etc.
	}

	var (
		dialector gorm.Dialector
		name      string
	)
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.Username, cfg.Password, cfg.Name, cfg.Port)
		if cfg.Schema != "" {
			dsn += " search_path=" + cfg.Schema
		}
		dialector = postgres.Open(dsn)
		name = cfg.Name
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
		name = cfg.SQLitePath
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer, and every new connection to
		// :memory: would otherwise see an empty database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &service{db: db, driver: cfg.Driver, name: name}, nil
}

// sqliteDSN enables foreign keys so ON DELETE SET NULL is honoured.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on"
}

func newLogger(level string) logger.Interface {
	logLevel := logger.Warn
	switch level {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the categories and todos tables. Categories go
// first so the todos foreign key can reference them.
func (s *service) Migrate() error {
	if err := s.db.AutoMigrate(&domain.Category{}, &domain.Todo{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Health pings the store and reports connection pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	stats["driver"] = s.driver

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		log.Printf("Error getting DB for health check: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Printf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 80 {
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > dbStats.Idle {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings (MaxIdleConns, ConnMaxIdleTime)."
	}

	if dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing ConnMaxLifetime or revising the connection usage pattern."
	}

	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB for closing: %v", err)
		return err
	}
	log.Printf("Closing connection pool for database: %s", s.name)
	return sqlDB.Close()
}
