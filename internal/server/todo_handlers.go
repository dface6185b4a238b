package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/service"
)

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todoResp, err := s.todoService.CreateTodo(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "create todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todoResp)
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseListTodosQuery(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, err, "retrieve todos")
		return
	}

	todos, err := s.todoService.ListTodos(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "retrieve todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

// parseListTodosQuery reads page, limit, search, completed, category_id and
// priority. Empty parameters are treated as absent; values that do not parse
// are reported as validation failures.
func parseListTodosQuery(q url.Values) (service.ListTodosRequest, error) {
	var (
		req  service.ListTodosRequest
		verr service.ValidationError
	)

	intParam := func(name, label string) int {
		raw := q.Get(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: name, Message: label + " must be an integer"})
			return 0
		}
		if n == 0 {
			// Explicit zero is out of range, not "use the default".
			n = -1
		}
		return n
	}

	req.Page = intParam("page", "Page")
	req.Limit = intParam("limit", "Limit")
	req.Search = q.Get("search")

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "completed", Message: "Completed must be a boolean"})
		} else {
			req.Completed = &completed
		}
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "category_id", Message: "Category id must be a positive integer"})
		} else {
			categoryID := uint(id)
			req.CategoryID = &categoryID
		}
	}

	if raw := q.Get("priority"); raw != "" {
		priority := domain.Priority(raw)
		req.Priority = &priority
	}

	if len(verr.Fields) > 0 {
		return req, &verr
	}
	return req, nil
}

func (s *Server) getTodoByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "todo")
	if !ok {
		return
	}

	todo, err := s.todoService.GetTodoByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "retrieve todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "todo")
	if !ok {
		return
	}

	var req service.UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updatedTodo, err := s.todoService.UpdateTodo(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "update todo")
		return
	}

	respondWithJSON(w, http.StatusOK, updatedTodo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "todo")
	if !ok {
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "delete todo")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "todo")
	if !ok {
		return
	}

	todo, err := s.todoService.ToggleTodoCompletion(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "toggle todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}
