package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cityevents/internal/domain"
)

// DateTimeLayout is the wire format for every timestamp in the API.
const DateTimeLayout = "2006-01-02 15:04:05"

// APIError is the stable error envelope returned for every failed request.
// swagger:model APIError
type APIError struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and encodes data.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteAPIError maps a service error onto the envelope. Sentinel errors carry
// their own message; anything unclassified becomes a 500 with a generic
// message so no internal detail leaks.
func WriteAPIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteErrorStatus(w, http.StatusNotFound, "The required object was not found.", err.Error())
	case errors.Is(err, domain.ErrConflict):
		WriteErrorStatus(w, http.StatusConflict, "For the requested operation the conditions are not met.", err.Error())
	case errors.Is(err, domain.ErrValidation):
		WriteErrorStatus(w, http.StatusBadRequest, "Incorrectly made request.", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteErrorStatus(w, http.StatusForbidden, "The operation is not allowed.", err.Error())
	default:
		WriteErrorStatus(w, http.StatusInternalServerError, "Internal server error.", "An unexpected error occurred.")
	}
}

// WriteErrorStatus writes the error envelope with an explicit HTTP status.
func WriteErrorStatus(w http.ResponseWriter, statusCode int, reason, message string) {
	WriteJSON(w, statusCode, APIError{
		Status:    http.StatusText(statusCode),
		Reason:    reason,
		Message:   message,
		Timestamp: time.Now().Format(DateTimeLayout),
	})
}
