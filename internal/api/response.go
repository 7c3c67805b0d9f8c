package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/portfolio"
	"github.com/yourusername/invest-tracker/internal/rules"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType string, err error) {
	writeJSON(w, status, errorResponse{Type: errType, Message: err.Error()})
}

// writeSyntaxError answers 422 with the offending line so the editor can
// highlight it
func writeSyntaxError(w http.ResponseWriter, err *rules.SyntaxError) {
	writeJSON(w, http.StatusUnprocessableEntity, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrUnknownSymbol):
		return http.StatusBadRequest, "unknown_symbol"
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidID),
		errors.Is(err, portfolio.ErrUnsupportedSide):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, models.ErrInsufficientFunds), errors.Is(err, models.ErrInsufficientHoldings):
		return http.StatusConflict, "rejected"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
