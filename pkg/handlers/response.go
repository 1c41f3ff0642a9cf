package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
)

// OwnerMiddleware is a function that wraps a handler with an owner-scoped
// database connection.
type OwnerMiddleware func(http.HandlerFunc) http.HandlerFunc

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

// validationResponse is the error body for schema and input violations,
// carrying the per-field breakdown when one exists.
type validationResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

// writeServiceError translates a service error into an HTTP response.
// Unclassified errors are logged and reported as an opaque 500; their
// detail never reaches the client.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		writeOrLog(logger, WriteJSON(w, http.StatusBadRequest, validationResponse{
			Error:   "validation_failed",
			Message: verr.Message,
			Fields:  verr.Fields,
		}))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeOrLog(logger, ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()))
	case errors.Is(err, apperrors.ErrConflict):
		writeOrLog(logger, ErrorResponse(w, http.StatusConflict, "conflict", err.Error()))
	case errors.Is(err, apperrors.ErrForbidden):
		writeOrLog(logger, ErrorResponse(w, http.StatusForbidden, "forbidden", err.Error()))
	case errors.Is(err, apperrors.ErrValidation):
		writeOrLog(logger, ErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error()))
	case errors.Is(err, apperrors.ErrUnauthenticated):
		writeOrLog(logger, ErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "Authentication required"))
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		writeOrLog(logger, ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"))
	}
}

func writeOrLog(logger *zap.Logger, err error) {
	if err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
