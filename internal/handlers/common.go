package handlers

import (
	"encoding/json"
	"net/http"

	"blog-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// errorBody is the JSON error shape shared by both transport surfaces.
type errorBody struct {
	Message string              `json:"message"`
	Data    []apperr.FieldError `json:"data,omitempty"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// badBody wraps a request body decode failure as a validation error.
func badBody(err error) error {
	return apperr.NewValidation("Invalid request body", apperr.FieldError{
		Message: err.Error(),
		Param:   "body",
	})
}

// respondError maps an error through the taxonomy and writes the JSON error
// body. Internal detail is logged server-side only.
func respondError(w http.ResponseWriter, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.Internal {
		log.Error().Err(err).Msg("Request failed")
	}
	respondJSON(w, ae.StatusCode(), errorBody{Message: ae.Message, Data: ae.Data})
}
