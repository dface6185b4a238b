package server

import (
	"net/http"

	"github.com/Tomlord1122/todo-api/internal/service"
)

func (s *Server) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.categoryService.CreateCategory(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "create category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categoryService.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "retrieve categories")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (s *Server) getCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "category")
	if !ok {
		return
	}

	category, err := s.categoryService.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "retrieve category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "category")
	if !ok {
		return
	}

	var req service.UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.categoryService.UpdateCategory(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "update category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "category")
	if !ok {
		return
	}

	if err := s.categoryService.DeleteCategory(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "delete category")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
