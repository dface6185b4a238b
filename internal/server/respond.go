package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/todo-api/internal/service"
)

// decodeJSON decodes the request body into dst. On failure it writes a 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
	default:
		// Custom unmarshalers, e.g. a due_date that is not RFC 3339.
		log.Printf("Error decoding request body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
	}
	return false
}

// parseID reads the {id} path parameter. On failure it writes a 400
// response and returns false.
func parseID(w http.ResponseWriter, r *http.Request, entity string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID provided", entity))
		return 0, false
	}
	return uint(id), true
}

// respondWithServiceError maps service errors to status codes. Unexpected
// errors are logged and reported as 500 with a generic message.
func respondWithServiceError(w http.ResponseWriter, err error, action string) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "Validation failed",
			"details": validationErr.Fields,
		})
	case errors.Is(err, service.ErrTodoNotFound):
		respondWithError(w, http.StatusNotFound, service.ErrTodoNotFound.Error())
	case errors.Is(err, service.ErrCategoryNotFound):
		respondWithError(w, http.StatusNotFound, service.ErrCategoryNotFound.Error())
	case errors.Is(err, service.ErrDuplicateCategory):
		respondWithError(w, http.StatusConflict, service.ErrDuplicateCategory.Error())
	case errors.Is(err, service.ErrUnknownCategory):
		respondWithError(w, http.StatusUnprocessableEntity, service.ErrUnknownCategory.Error())
	default:
		log.Printf("Error calling service to %s: %v", action, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
