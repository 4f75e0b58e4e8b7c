package server

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/friendgate/friendgate/activity"
	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/sessions"
)

// friendFromPath resolves the capability token in the URL path. The token
// is the friend's bearer credential for the portal itself.
func (s *Server) friendFromPath(r *http.Request) (*friends.Friend, error) {
	token := r.PathValue("token")
	if token == "" {
		return nil, apperrors.ErrFriendNotFound
	}
	friend, err := s.repos.Friends.GetByToken(r.Context(), token)
	if err != nil {
		return nil, errors.Wrap(err, "[Server.friendFromPath] friends.GetByToken")
	}
	return friend, nil
}

// FriendViewHandler serves the friend's portal view: requirement snapshot
// plus granted services. Each view counts exactly once against the usage
// counter, and only while access is still open.
func (s *Server) FriendViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		requirements := s.auth.CheckRequirements(friend)
		if requirements.IsExpired {
			respondJSON(w, http.StatusOK, map[string]any{
				"name":         friend.Name,
				"requirements": requirements,
			})
			return
		}

		count, err := s.auth.IncrementUsage(r.Context(), friend.ID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		friend.UsageCount = count
		if err := s.repos.Friends.SetLastVisit(r.Context(), friend.ID, time.Now()); err != nil {
			s.log.Warn().Err(err).Str("friend", friend.ID).Msg("last visit update failed")
		}
		s.note(r, activity.Entry{Action: activity.ActionPageView, FriendID: friend.ID})

		// Recompute after the increment so a view that crosses the
		// threshold reports the new requirement immediately.
		requirements = s.auth.CheckRequirements(friend)

		services, err := s.repos.Grants.ServicesFor(r.Context(), friend.ID)
		if err != nil {
			s.respondError(w, err)
			return
		}

		session, err := s.sessions.Validate(r.Context(), sessionToken(r))
		authenticated := err == nil && session.Type == sessions.TypeFriend && session.SubjectID == friend.ID

		respondJSON(w, http.StatusOK, map[string]any{
			"name":          friend.Name,
			"usage_count":   friend.UsageCount,
			"requirements":  requirements,
			"services":      services,
			"authenticated": authenticated,
		})
	}
}

type friendLoginRequest struct {
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
	Remember bool   `json:"remember"`
}

// FriendLoginHandler verifies the required factors and mints a friend
// session cookie.
func (s *Server) FriendLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req friendLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		if err := s.auth.Authenticate(friend, req.Password, req.TOTPCode); err != nil {
			s.respondError(w, err)
			return
		}

		token, expiresAt, err := s.sessions.Create(r.Context(), sessions.TypeFriend, friend.ID, req.Remember, r.UserAgent())
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.setSessionCookie(w, token, expiresAt)
		s.note(r, activity.Entry{Action: activity.ActionAuthLogin, FriendID: friend.ID})

		respondJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"expires_at":    expiresAt,
		})
	}
}

type friendSessionRequest struct {
	Token    string `json:"token"`
	Remember bool   `json:"remember"`
}

// FriendSessionHandler mints a friend session straight from the capability
// token, for friends whose current requirements are open. Friends with a
// pending factor are pointed at the login flow instead.
func (s *Server) FriendSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req friendSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		friend, err := s.repos.Friends.GetByToken(r.Context(), req.Token)
		if err != nil {
			s.respondError(w, err)
			return
		}

		requirements := s.auth.CheckRequirements(friend)
		if requirements.IsExpired {
			s.respondError(w, apperrors.ErrAccessExpired)
			return
		}
		if requirements.Required() {
			respondJSON(w, http.StatusUnauthorized, map[string]any{
				"authenticated": false,
				"requirements":  requirements,
			})
			return
		}

		token, expiresAt, err := s.sessions.Create(r.Context(), sessions.TypeFriend, friend.ID, req.Remember, r.UserAgent())
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

type setupPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) FriendSetupPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req setupPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		if err := s.auth.SetPassword(r.Context(), friend, req.Password); err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"password_set": true})
	}
}

// FriendSetupTOTPHandler starts TOTP enrollment and returns the secret
// plus the otpauth URI for QR rendering.
func (s *Server) FriendSetupTOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		secret, uri, err := s.auth.EnrollTOTP(r.Context(), friend, s.config.GetBaseDomain())
		if err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"secret":         secret,
			"enrollment_uri": uri,
		})
	}
}

type verifyTOTPRequest struct {
	Code string `json:"code"`
}

func (s *Server) FriendVerifyTOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		var req verifyTOTPRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
			return
		}

		if err := s.auth.ConfirmTOTP(friend, req.Code); err != nil {
			s.respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"totp_enabled": true})
	}
}

// FriendCredentialsHandler returns the stored per-service credential for
// manual copy on credential-display services.
func (s *Server) FriendCredentialsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friend, err := s.friendFromPath(r)
		if err != nil {
			s.respondError(w, err)
			return
		}

		service, err := s.repos.Services.GetBySubdomain(r.Context(), r.PathValue("subdomain"))
		if err != nil {
			s.respondError(w, err)
			return
		}

		granted, err := s.repos.Grants.HasGrant(r.Context(), friend.ID, service.ID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		if !granted {
			s.respondError(w, apperrors.ErrForbidden)
			return
		}

		credential, err := s.repos.Credentials.Get(r.Context(), friend.ID, service.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.respondError(w, apperrors.ErrForbidden)
				return
			}
			s.respondError(w, err)
			return
		}
		s.note(r, activity.Entry{Action: activity.ActionCredentialView, FriendID: friend.ID, ServiceID: service.ID})

		respondJSON(w, http.StatusOK, map[string]any{
			"service":  service.Name,
			"username": credential.Username,
			"secret":   credential.Secret,
		})
	}
}

// note records an activity entry best effort.
func (s *Server) note(r *http.Request, entry activity.Entry) {
	if err := s.recorder.Record(r.Context(), entry); err != nil {
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("activity note failed")
	}
}
