// Package httpx holds the JSON response helpers and middleware shared by
// every HTTP handler of the API.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"kitchen-flow/internal/restaurant"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// StatusFor maps an error category to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, restaurant.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, restaurant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, restaurant.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status StatusFor picks. Server side
// failures are reported with the generic message instead of err's text.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		WriteError(w, r, status, internalMessage)
		return
	}
	WriteError(w, r, status, err.Error())
}

// DecodeJSON decodes the request body into v. Decoding failures are
// validation errors. An empty body decodes to the zero value when allowEmpty is set.
func DecodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return restaurant.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
