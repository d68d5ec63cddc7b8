package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/infrastructure/cache"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
)

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrRateUnavailable), errors.Is(err, entity.ErrCurrencyListFailed):
		return http.StatusServiceUnavailable, "Exchange rate service unavailable"
	case errors.Is(err, entity.ErrCurrencyNotFound):
		return http.StatusNotFound, "Currency not found"
	case errors.Is(err, entity.ErrConversionNotFound):
		return http.StatusNotFound, "Conversion not found"
	case errors.Is(err, entity.ErrInvalidCurrency),
		errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrCurrencyMismatch),
		errors.Is(err, cache.ErrMissingCurrency):
		return http.StatusBadRequest, "Invalid request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// sendServiceError logs err and sends the mapped error response
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	status, message := statusForError(err)

	fields := map[string]interface{}{
		"request_id":  requestID,
		"status_code": status,
		"error":       err.Error(),
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", fields)
	} else {
		log.Warn("Request rejected", fields)
	}

	// upstream and internal failures stay in the logs only
	var description string
	switch {
	case status == http.StatusServiceUnavailable:
		description = "The exchange rate provider is unavailable, try again later"
	case status >= http.StatusInternalServerError:
		description = "An unexpected error occurred"
	default:
		description = err.Error()
	}

	sendErrorResponse(w, log, message, description, status, requestID)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, resp)
}

func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
