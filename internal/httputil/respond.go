// Package httputil carries the JSON request/response helpers shared by the
// per-domain HTTP services.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/apperr"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// WriteError maps a domain error to its HTTP status and a JSON error body.
// Unexpected errors are logged and surfaced as a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("internal server error")
		msg = "internal server error"
	}
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	return nil
}
