package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.rootHandler)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Post("/", s.createTodoHandler)
			r.Get("/", s.listTodosHandler)
			r.Get("/{id}", s.getTodoByIDHandler)
			r.Put("/{id}", s.updateTodoHandler)
			r.Delete("/{id}", s.deleteTodoHandler)
			r.Patch("/{id}/complete", s.toggleTodoHandler)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", s.createCategoryHandler)
			r.Get("/", s.listCategoriesHandler)
			r.Get("/{id}", s.getCategoryByIDHandler)
			r.Put("/{id}", s.updateCategoryHandler)
			r.Delete("/{id}", s.deleteCategoryHandler)
		})
	})

	return r
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Todo API"})
}

// healthHandler reports database pool statistics and, when enabled, the
// cache status. Only a down database makes the service unavailable.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()

	cacheStats := s.cache.Stats()
	if cacheStats.Enabled {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.cache.Ping(ctx); err != nil {
			healthStats["cache_status"] = "down"
			healthStats["cache_error"] = err.Error()
		} else {
			healthStats["cache_status"] = "up"
		}
		healthStats["cache_hit_rate"] = fmt.Sprintf("%.2f%%", cacheStats.HitRate)
	} else {
		healthStats["cache_status"] = "disabled"
	}

	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
