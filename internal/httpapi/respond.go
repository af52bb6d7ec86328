package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/llk-ledger/ledger/internal/errs"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, code string, message string, status int) {
	respondJSON(w, status, errorBody{Error: code, Message: message})
}

// mapError writes the HTTP status/code pair documented in the error-handling
// design for the given domain error, and returns the status written (for the
// caller's Prometheus label).
func mapError(w http.ResponseWriter, err error) int {
	code, status, message := classify(err)
	respondError(w, code, message, status)
	return status
}

// statusFromErr reports the status mapError would write, without writing a
// response -- used when a handler has already called mapError and only needs
// the code for instrumentation.
func statusFromErr(err error) int {
	_, status, _ := classify(err)
	return status
}

func classify(err error) (code string, status int, message string) {
	var e *errs.Error
	if !errors.As(err, &e) {
		return "INTERNAL_ERROR", http.StatusInternalServerError, "Internal server error"
	}

	switch e.Kind {
	case errs.KindInvariantViolation:
		return string(e.Kind), http.StatusBadRequest, e.Message
	case errs.KindUnauthorized:
		return string(e.Kind), http.StatusUnauthorized, e.Message
	case errs.KindForbidden:
		return string(e.Kind), http.StatusForbidden, e.Message
	case errs.KindLedgerNotFound:
		return string(e.Kind), http.StatusNotFound, e.Message
	case errs.KindRepositoryError:
		return string(e.Kind), http.StatusInternalServerError, "Internal server error"
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError, "Internal server error"
	}
}
