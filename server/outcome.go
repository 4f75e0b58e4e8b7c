package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/friendgate/friendgate/sso"
)

var autoLoginTemplate = template.Must(template.New("autologin").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="1;url={{.DestinationURL}}">
<title>Signing in to {{.ServiceName}}</title>
</head>
<body>
<p>Signing you in to {{.ServiceName}}&hellip;</p>
<p>If nothing happens, sign in manually with username <code>{{.Username}}</code> and password <code>{{.Password}}</code>.</p>
</body>
</html>`))

var credentialsTemplate = template.Must(template.New("credentials").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.ServiceName}} credentials</title>
</head>
<body>
<h1>{{.ServiceName}}</h1>
<p>Sign in at <a href="{{.ServiceURL}}">{{.ServiceURL}}</a> with:</p>
<p>Username: <code>{{.Username}}</code><br>Password: <code>{{.Secret}}</code></p>
</body>
</html>`))

// renderOutcome turns the dispatcher's terminal outcome into a response.
// The variant set is closed; every arm ends the request.
func (s *Server) renderOutcome(w http.ResponseWriter, r *http.Request, outcome sso.Outcome) {
	switch o := outcome.(type) {
	case sso.Redirect:
		http.Redirect(w, r, o.URL, http.StatusFound)

	case sso.LoginRedirect:
		http.Redirect(w, r, "/?"+url.Values{"reason": {o.Reason}}.Encode(), http.StatusFound)

	case sso.DeniedRedirect:
		http.Redirect(w, r, "/?"+url.Values{"request_access": {o.Subdomain}}.Encode(), http.StatusFound)

	case sso.AutoLoginPage:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := autoLoginTemplate.Execute(w, o); err != nil {
			s.log.Error().Err(err).Msg("auto-login render failed")
		}

	case sso.SetCookies:
		for name, value := range o.Cookies {
			s.setServiceCookie(w, name, value)
		}
		http.Redirect(w, r, o.RedirectURL, http.StatusFound)

	case sso.ShowCredentials:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := credentialsTemplate.Execute(w, o); err != nil {
			s.log.Error().Err(err).Msg("credentials render failed")
		}

	default:
		s.log.Error().Msgf("unhandled dispatch outcome %T", outcome)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
