package server

import (
	"crypto/subtle"
	"net/http"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/sessions"
)

type adminLoginRequest struct {
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// AdminLoginHandler exchanges the admin password for an admin session
// cookie.
func (s *Server) AdminLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		configured := s.config.GetAdminPassword()
		if configured == "" {
			s.respondError(w, apperrors.ErrNotConfigured)
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(configured)) != 1 {
			s.respondError(w, apperrors.ErrUnauthorized)
			return
		}

		token, expiresAt, err := s.sessions.Create(r.Context(), sessions.TypeAdmin, "", req.Remember, r.UserAgent())
		if err != nil {
			s.respondError(w, err)
			return
		}

		s.setSessionCookie(w, token, expiresAt)
		respondJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"expires_at":    expiresAt,
		})
	}
}

// AdminVerifyHandler reports whether the request carries a live admin
// session.
func (s *Server) AdminVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Validate(r.Context(), sessionToken(r))
		if err != nil || session.Type != sessions.TypeAdmin {
			s.respondError(w, apperrors.ErrUnauthorized)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"expires_at":    session.ExpiresAt,
		})
	}
}

// AdminLogoutHandler deletes the session and clears the cookie. Always
// succeeds; logging out twice is not an error.
func (s *Server) AdminLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessionToken(r); token != "" {
			if err := s.sessions.Delete(r.Context(), token); err != nil {
				s.log.Warn().Err(err).Msg("session delete failed")
			}
		}
		s.clearSessionCookie(w)
		respondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
	}
}
