package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/services"
)

// Machine-readable error codes returned in the error envelope.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeInvalidCreds     = "INVALID_CREDENTIALS"
	codeDuplicateUser    = "DUPLICATE_USER"
	codeUnauthorized     = "UNAUTHORIZED"
	codeMissingToken     = "MISSING_TOKEN"
	codeInvalidToken     = "INVALID_TOKEN"
	codeInvalidTokenType = "INVALID_TOKEN_TYPE"
	codeForbidden        = "FORBIDDEN"
	codeNotFound         = "NOT_FOUND"
	codeInvalidCategory  = "INVALID_CATEGORY"
	codeDuplicateBudget  = "DUPLICATE_BUDGET"
	codeRateLimited      = "RATE_LIMITED"
	codeServerError      = "SERVER_ERROR"
)

type errorBody struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("failed to encode response body", "error", err)
		}
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, details []string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Message: message,
		Code:    code,
		Details: details,
	}})
}

// writeError maps a service or auth error onto a status code and a stable
// error code. Anything unrecognized is a 500 with no internals leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeErrorCode(w, http.StatusBadRequest, codeValidation, "validation failed", verr.Problems)
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, codeInvalidCreds, auth.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, auth.ErrMissingCredentials):
		writeErrorCode(w, http.StatusUnauthorized, codeMissingToken, auth.ErrMissingCredentials.Error(), nil)
	case errors.Is(err, auth.ErrMalformedCredentials):
		writeErrorCode(w, http.StatusUnauthorized, codeInvalidToken, auth.ErrMalformedCredentials.Error(), nil)
	case errors.Is(err, auth.ErrWrongTokenKind):
		// Checked before the umbrella errors: both wrap it.
		writeErrorCode(w, http.StatusUnauthorized, codeInvalidTokenType, auth.ErrWrongTokenKind.Error(), nil)
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		writeErrorCode(w, http.StatusUnauthorized, codeInvalidToken, auth.ErrInvalidRefreshToken.Error(), nil)
	case errors.Is(err, auth.ErrUnauthorized):
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, auth.ErrUnauthorized.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, codeNotFound, services.ErrNotFound.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		writeErrorCode(w, http.StatusForbidden, codeForbidden, services.ErrForbidden.Error(), nil)
	case errors.Is(err, services.ErrDuplicateUser):
		writeErrorCode(w, http.StatusConflict, codeDuplicateUser, services.ErrDuplicateUser.Error(), nil)
	case errors.Is(err, services.ErrInvalidCategory):
		writeErrorCode(w, http.StatusBadRequest, codeInvalidCategory, services.ErrInvalidCategory.Error(), nil)
	case errors.Is(err, services.ErrDuplicateBudget):
		writeErrorCode(w, http.StatusConflict, codeDuplicateBudget, services.ErrDuplicateBudget.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorCode(w, http.StatusInternalServerError, codeServerError, "internal server error", nil)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeValidation, "request body must be valid JSON", nil)
		return false
	}
	return true
}
