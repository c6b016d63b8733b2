package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/advisory"
	"github.com/khamari/khamari-api/internal/auth"
	"github.com/khamari/khamari-api/internal/diagnosis"
	"github.com/khamari/khamari-api/internal/otp"
	"github.com/khamari/khamari-api/internal/resilience"
	"github.com/khamari/khamari-api/internal/suggest"
)

// errorBody is the uniform error payload. Messages are generic; internals
// stay in the server log.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a service error to the client-facing taxonomy: 401 auth,
// 400 validation, 429/402 upstream passthrough, generic 500 for the rest.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, advisory.ErrFarmNotOwned):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})

	case errors.Is(err, diagnosis.ErrInvalidImage):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid image input"})
	case errors.Is(err, suggest.ErrInvalidItem):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid item input"})
	case errors.Is(err, otp.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid email address"})
	case errors.Is(err, otp.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid or expired code"})

	case errors.Is(err, otp.ErrSendLimit):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests, try again later"})
	case errors.Is(err, resilience.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limited, try again later"})
	case errors.Is(err, resilience.ErrQuotaExceeded):
		writeJSON(w, http.StatusPaymentRequired, errorBody{Error: "service credits required"})

	default:
		if resilience.IsTransient(err) {
			zap.L().Warn("upstream transient failure", zap.Error(err))
		} else {
			zap.L().Error("request failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// badRequest writes a 400 with a field-specific message.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
