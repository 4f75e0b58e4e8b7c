package server

import (
	"net/http"
	"time"
)

// sessionCookieName is the single session cookie shared by admin and
// friend sessions.
const sessionCookieName = "fg_session"

// cookieDomainConfigured reports whether a real (non-local) cookie domain
// is set. Only then do cookies carry the Secure flag and an explicit
// Domain, so local development over plain http keeps working.
func (s *Server) cookieDomainConfigured() (string, bool) {
	domain := s.config.GetCookieDomain()
	if domain == "" || domain == "localhost" {
		return "", false
	}
	return domain, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	}
	if domain, ok := s.cookieDomainConfigured(); ok {
		cookie.Domain = domain
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	if domain, ok := s.cookieDomainConfigured(); ok {
		cookie.Domain = domain
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

// sessionToken extracts the session token from the request cookie. Absent
// cookies return the empty string, which the session store treats as an
// unknown session.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setServiceCookie sets one upstream session cookie from a cookie-proxy
// handshake, with the same flag policy as the session cookie.
func (s *Server) setServiceCookie(w http.ResponseWriter, name, value string) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if domain, ok := s.cookieDomainConfigured(); ok {
		cookie.Domain = domain
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}
