package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

type errorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Success bool                `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Success: true})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, envelope{Message: msg, Success: true})
}

func writeError(w http.ResponseWriter, status int, msg, code string, fields map[string][]string) {
	writeJSON(w, status, errorBody{Message: msg, Code: code, Errors: fields})
}

func writeValidationError(w http.ResponseWriter, fields map[string][]string) {
	writeError(w, http.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", fields)
}

// fail maps a service error to its HTTP response. Unexpected errors are
// logged and reported as a bare 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found", "NOT_FOUND", nil)
	case errors.Is(err, common.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Email is already registered", "ALREADY_EXISTS", nil)
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid email or password", "UNAUTHORIZED", nil)
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED", nil)
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "Refresh token expired", "REFRESH_TOKEN_EXPIRED", nil)
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN", nil)
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", "FORBIDDEN", nil)
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	default:
		s.logger.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}
}
