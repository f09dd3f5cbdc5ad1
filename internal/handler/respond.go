package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// statusFromError maps the typed error taxonomy onto HTTP status codes.
// Anything unclassified is an internal error.
func statusFromError(err error) int {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var stockErr *models.InsufficientStockError
	var unavailableErr *models.UnavailableError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err. Internal errors are
// masked so driver details never leak into responses.
func errorMessage(err error) string {
	switch statusFromError(err) {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return err.Error()
	}
}

func newRequestContext(r *http.Request) *logger.RequestContext {
	return &logger.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		StartTime:  time.Now(),
	}
}

// writeJSONResponse writes JSON response with given status code and data
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// writeErrorResponse writes an error response with given status code and message
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps a service error onto the wire format.
func writeServiceError(w http.ResponseWriter, err error) int {
	statusCode := statusFromError(err)
	writeErrorResponse(w, statusCode, errorMessage(err))
	return statusCode
}

// parseRequestBody parses JSON request body into the target struct
func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
