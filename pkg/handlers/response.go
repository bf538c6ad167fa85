package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
)

// ApiResponse is the standard envelope for successful API responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationErrorBody is written for requests rejected by input validation.
type ValidationErrorBody struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error onto an HTTP status:
// validation 400, not found 404, empty catalog 503, anything else 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, failureCode string) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body := ValidationErrorBody{Error: "validation_failed", Message: verr.Error(), Fields: verr.Fields}
		if err := WriteJSON(w, http.StatusBadRequest, body); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	status, code, message := http.StatusInternalServerError, failureCode, "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, "validation_failed", err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, apperrors.ErrCatalogEmpty):
		status, code, message = http.StatusServiceUnavailable, "catalog_empty", "Requirement catalog has not been built; run extract first"
	default:
		logger.Error("Request failed", zap.String("code", failureCode), zap.Error(err))
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// decodeJSON reads the request body into v, writing a 400 response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
