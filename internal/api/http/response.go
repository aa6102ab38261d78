package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a service error to its HTTP status.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed", "error", err)
		writeErrorMessage(w, status, "internal error")
		return
	}

	resp := errorResponse{Error: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = domain.ErrValidation.Error()
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSponsorNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLinkExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSponsorInactive),
		errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrSelfApproval):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
