package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-api/internal/cache"
	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/service"
)

type Server struct {
	port            int
	corsOrigins     []string
	todoService     service.TodoService
	categoryService service.CategoryService
	db              database.Service
	cache           cache.Cache
}

func NewServer(
	cfg *config.Config,
	todoService service.TodoService,
	categoryService service.CategoryService,
	dbService database.Service,
	c cache.Cache,
) *http.Server {
	if c == nil {
		c = cache.Nop{}
	}

	appServer := &Server{
		port:            cfg.Port,
		corsOrigins:     cfg.CORSOrigins,
		todoService:     todoService,
		categoryService: categoryService,
		db:              dbService,
		cache:           c,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
