package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	apperrors "github.com/friendgate/friendgate/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	respondJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func decodeJSON(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return errors.Wrap(err, "[decodeJSON] parse request body")
	}
	return nil
}

// respondError maps domain errors onto the wire. Authentication failures
// stay generic so the response never enumerates which factor was wrong for
// an attacker probing a token; configuration detail never leaks at all.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccessExpired):
		writeJSONError(w, "access_expired", "Your access has expired", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrPasswordRequired):
		writeJSONError(w, "password_required", "A password is required", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTOTPRequired):
		writeJSONError(w, "totp_required", "A verification code is required", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrInvalidPassword), errors.Is(err, apperrors.ErrInvalidTOTP),
		errors.Is(err, apperrors.ErrUnauthorized):
		writeJSONError(w, "unauthorized", "Authentication failed", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrPasswordTooShort):
		writeJSONError(w, "password_too_short", "Password must be at least 8 characters", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrTOTPNotEnrolled):
		writeJSONError(w, "totp_not_enrolled", "No authenticator is enrolled", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrNoGrant):
		writeJSONError(w, "forbidden", "Access denied", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrFriendNotFound),
		errors.Is(err, apperrors.ErrServiceNotFound), errors.Is(err, apperrors.ErrSessionNotFound):
		writeJSONError(w, "not_found", "Not found", http.StatusNotFound)
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeJSONError(w, "server_error", "Internal server error", http.StatusInternalServerError)
	}
}
