package sso

// Outcome is the terminal response of a dispatch: exactly one outbound
// response per invocation. The variants form a closed set; the server
// renders them without knowing strategy internals.
type Outcome interface {
	isOutcome()
}

// Redirect sends the user agent straight to a URL.
type Redirect struct {
	URL string
}

// LoginRedirect sends the user back to the portal login surface with a
// reason flag. This is a normal UX branch, not an error.
type LoginRedirect struct {
	Reason string
}

// DeniedRedirect sends the user back to the portal with an "access denied,
// request it" flag for the named service.
type DeniedRedirect struct {
	Subdomain string
}

// AutoLoginPage renders a short auto-redirecting page for basic-credential
// services, with the credentials available for manual fallback.
type AutoLoginPage struct {
	DestinationURL string // credentials embedded in the URL userinfo
	ServiceName    string
	Username       string
	Password       string
}

// SetCookies instructs the server to set each session cookie on the
// response and then redirect to the service origin.
type SetCookies struct {
	Cookies     map[string]string
	RedirectURL string
}

// ShowCredentials renders the stored credentials for manual copy. No
// redirect is attempted.
type ShowCredentials struct {
	ServiceName string
	ServiceURL  string
	Username    string
	Secret      string
}

func (Redirect) isOutcome()        {}
func (LoginRedirect) isOutcome()   {}
func (DeniedRedirect) isOutcome()  {}
func (AutoLoginPage) isOutcome()   {}
func (SetCookies) isOutcome()      {}
func (ShowCredentials) isOutcome() {}
