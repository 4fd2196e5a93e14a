package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coursecraft/coursecraft/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteKindError maps a classified error to its HTTP status and writes the
// stable error code alongside the message and suggested fix.
func WriteKindError(w http.ResponseWriter, err error) error {
	kind := models.KindOf(err)
	return WriteJSON(w, statusForKind(kind), map[string]string{
		"status":        "error",
		"error_code":    string(kind),
		"error":         err.Error(),
		"suggested_fix": models.SuggestedFix(kind),
	})
}

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindValidation:
		return http.StatusBadRequest
	case models.ErrorKindJobNotFound, models.ErrorKindCourseNotFound:
		return http.StatusNotFound
	case models.ErrorKindIdempotencyConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
