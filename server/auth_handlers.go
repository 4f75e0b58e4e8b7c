package server

import (
	"net/http"

	"github.com/friendgate/friendgate/activity"
)

// ForwardAuthHandler answers the reverse proxy's per-request probe. The
// proxy sends the original host in X-Forwarded-Host and copies the
// identity headers from an allow onto the upstream request.
func (s *Server) ForwardAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		decision, err := s.gateway.Check(r.Context(), sessionToken(r), host)
		if err != nil {
			s.respondError(w, err)
			return
		}

		if decision.Allow {
			for name, value := range decision.Headers {
				w.Header().Set(name, value)
			}
			w.WriteHeader(decision.Status)
			return
		}

		if decision.Hint != nil {
			respondJSON(w, decision.Status, decision.Hint)
			return
		}
		writeJSONError(w, "unauthorized", "Authentication required", decision.Status)
	}
}

// ServiceClickHandler is the unified entry point for a click on a service
// link: it runs the dispatcher and renders whichever terminal outcome the
// service's strategy produced.
func (s *Server) ServiceClickHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subdomain := r.PathValue("subdomain")

		outcome, err := s.dispatcher.Dispatch(r.Context(), sessionToken(r), subdomain)
		if err != nil {
			s.respondError(w, err)
			return
		}

		if session, err := s.sessions.Validate(r.Context(), sessionToken(r)); err == nil {
			s.note(r, activity.Entry{Action: activity.ActionServiceClick, FriendID: session.SubjectID, Details: subdomain})
		}

		s.renderOutcome(w, r, outcome)
	}
}
