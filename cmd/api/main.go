package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-api/internal/cache"
	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/repository"
	"github.com/Tomlord1122/todo-api/internal/server"
	"github.com/Tomlord1122/todo-api/internal/service"
)

var (
	configPath string
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "todo-api",
	Short: "Todo and category REST API",
	Long: `Serves the todo and category API.

Settings come from defaults, an optional YAML config file and the
environment (a .env file is read automatically). Flags override both.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dbService, err := database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := dbService.Migrate(); err != nil {
			return err
		}
		log.Println("Database migration complete.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $TODO_API_CONFIG or ./todo-api.yaml)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides PORT)")
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path != "" {
		log.Printf("Loaded config file %s", path)
	}
	if port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, responseCache cache.Cache, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if responseCache != nil {
		if err := responseCache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func serve(cfg *config.Config) error {
	// 1. Database
	dbService, err := database.New(cfg.Database)
	if err != nil {
		return err
	}

	log.Println("Running database auto-migration...")
	if err := dbService.Migrate(); err != nil {
		dbService.Close()
		return err
	}
	log.Println("Database auto-migration complete.")

	// 2. Cache (no-op when REDIS_ADDR is unset)
	responseCache, err := cache.New(cfg.Cache)
	if err != nil {
		dbService.Close()
		return err
	}

	// 3. Repositories and services
	gormDB := dbService.GetDB()
	todoRepo := repository.NewGormTodoRepository(gormDB)
	categoryRepo := repository.NewGormCategoryRepository(gormDB)

	todoService := service.NewTodoService(todoRepo, categoryRepo, responseCache)
	categoryService := service.NewCategoryService(categoryRepo, responseCache)

	// 4. HTTP server
	chiServer := server.NewServer(cfg, todoService, categoryService, dbService, responseCache)

	done := make(chan bool, 1)
	go gracefulShutdown(chiServer, dbService, responseCache, done)

	log.Printf("Starting server on %s", chiServer.Addr)
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server ListenAndServe error: %w", err)
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
