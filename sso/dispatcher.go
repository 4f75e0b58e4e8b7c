// Package sso dispatches a subject's click on a service link to the login
// handshake that service is configured for, normalizing three underlying
// login primitives (bearer token, session cookie, none/basic) into a single
// "click, land authenticated" experience.
package sso

import (
	"context"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/registry"
	"github.com/friendgate/friendgate/sessions"
)

const (
	// AdminSubjectID is the pseudo-identity admins dispatch under. Their
	// per-service credentials, when provisioned, are keyed by it.
	AdminSubjectID = "admin"

	// setupPath is the same-origin page on each service's subdomain that
	// consumes transit parameters and writes them into client storage.
	setupPath = "/sso-setup"

	defaultUpstreamTimeout = 10 * time.Second
)

// Config carries the static configuration a dispatch needs.
type Config struct {
	BaseDomain    string // e.g. "example.com"; services live on subdomains of it
	BasicAuthUser string // shared credentials for basic-credential services
	BasicAuthPass string
}

// Repos holds all repository dependencies for the Dispatcher.
type Repos struct {
	Friends     friends.Repo
	Services    registry.ServiceRepo
	Grants      registry.GrantRepo
	Credentials registry.CredentialRepo
}

// Dispatcher executes the per-click state machine:
// session -> grant -> strategy -> terminal response.
type Dispatcher struct {
	repos           Repos
	store           *sessions.Store
	integrations    registry.Integrations
	config          Config
	upstreamTimeout time.Duration
	log             zerolog.Logger
}

// DispatcherOption defines a function type to modify the Dispatcher instance.
type DispatcherOption func(*Dispatcher)

// WithUpstreamTimeout overrides the hard cutoff for the single outbound
// authenticate call (primarily for testing).
func WithUpstreamTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.upstreamTimeout = timeout
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(log zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// NewDispatcher initializes a Dispatcher with required dependencies.
func NewDispatcher(repos Repos, store *sessions.Store, integrations registry.Integrations, config Config, options ...DispatcherOption) (*Dispatcher, error) {
	if repos.Friends == nil {
		return nil, errors.New("[NewDispatcher] Friends repo is required")
	}
	if repos.Services == nil {
		return nil, errors.New("[NewDispatcher] Services repo is required")
	}
	if repos.Grants == nil {
		return nil, errors.New("[NewDispatcher] Grants repo is required")
	}
	if repos.Credentials == nil {
		return nil, errors.New("[NewDispatcher] Credentials repo is required")
	}
	if store == nil {
		return nil, errors.New("[NewDispatcher] session store is required")
	}
	if integrations == nil {
		integrations = registry.StaticIntegrations{}
	}

	dispatcher := &Dispatcher{
		repos:           repos,
		store:           store,
		integrations:    integrations,
		config:          config,
		upstreamTimeout: defaultUpstreamTimeout,
		log:             zerolog.Nop(),
	}
	for _, opt := range options {
		opt(dispatcher)
	}
	return dispatcher, nil
}

// Dispatch resolves the presented session token, authorizes the subject for
// the service on the given subdomain, and executes the configured login
// handshake. It makes at most one upstream call, never retries, and returns
// exactly one terminal outcome or error.
func (d *Dispatcher) Dispatch(ctx context.Context, token, subdomain string) (Outcome, error) {
	// Absent or expired session is a normal branch: back to the login surface.
	session, err := d.store.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return LoginRedirect{Reason: "auth_required"}, nil
		}
		return nil, errors.Wrap(err, "[Dispatcher.Dispatch] store.Validate")
	}

	service, err := d.repos.Services.GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, apperrors.ErrServiceNotFound) {
			return nil, apperrors.ErrServiceNotFound
		}
		return nil, errors.Wrap(err, "[Dispatcher.Dispatch] services.GetBySubdomain")
	}

	// Admins are implicitly authorized for every service but run the same
	// strategy table under the admin pseudo-identity.
	identityID := AdminSubjectID
	identityName := AdminSubjectID
	if session.Type == sessions.TypeFriend {
		friend, err := d.repos.Friends.GetByID(ctx, session.SubjectID)
		if err != nil {
			return nil, errors.Wrap(err, "[Dispatcher.Dispatch] friends.GetByID")
		}

		granted, err := d.repos.Grants.HasGrant(ctx, friend.ID, service.ID)
		if err != nil {
			return nil, errors.Wrap(err, "[Dispatcher.Dispatch] grants.HasGrant")
		}
		if !granted {
			return DeniedRedirect{Subdomain: subdomain}, nil
		}
		identityID = friend.ID
		identityName = friend.Name
	}

	return d.runStrategy(ctx, service, identityID, identityName)
}

// runStrategy is the closed dispatch over the strategy table. ParseStrategy
// already collapsed unknown tags to StrategyNone, so the default arm only
// guards against a future variant being added without a handler here.
func (d *Dispatcher) runStrategy(ctx context.Context, service *registry.Service, identityID, identityName string) (Outcome, error) {
	switch service.Strategy {
	case registry.StrategyBasic:
		return d.basicCredential(service)
	case registry.StrategyTokenInject:
		return d.tokenInject(ctx, service, identityID)
	case registry.StrategyCookieProxy:
		return d.cookieProxy(ctx, service, identityID)
	case registry.StrategyCredentialDisplay:
		return d.credentialDisplay(ctx, service, identityID)
	case registry.StrategyNone:
		return Redirect{URL: d.serviceOrigin(service)}, nil
	default:
		// Never hard-fail the end user on a strategy this build doesn't know.
		d.log.Warn().Str("service", service.Name).Str("strategy", string(service.Strategy)).Msg("unhandled auth strategy, falling back to plain redirect")
		return Redirect{URL: d.serviceOrigin(service)}, nil
	}
}

func (d *Dispatcher) basicCredential(service *registry.Service) (Outcome, error) {
	if d.config.BasicAuthUser == "" || d.config.BasicAuthPass == "" {
		return nil, errors.Wrap(apperrors.ErrNotConfigured, "basic auth credentials")
	}

	destination := "https://" +
		url.UserPassword(d.config.BasicAuthUser, d.config.BasicAuthPass).String() +
		"@" + service.Subdomain + "." + d.config.BaseDomain + "/"
	return AutoLoginPage{
		DestinationURL: destination,
		ServiceName:    service.Name,
		Username:       d.config.BasicAuthUser,
		Password:       d.config.BasicAuthPass,
	}, nil
}

func (d *Dispatcher) tokenInject(ctx context.Context, service *registry.Service, identityID string) (Outcome, error) {
	result, err := d.authenticateUpstream(ctx, service, identityID)
	if err != nil {
		return nil, err
	}

	// The token rides as transit parameters to the service's own setup page,
	// which writes it into that origin's persisted client storage.
	params := url.Values{}
	params.Set("access_token", result.Token)
	for key, value := range result.Extra {
		params.Set(key, value)
	}
	return Redirect{URL: d.serviceOrigin(service) + setupPath + "?" + params.Encode()}, nil
}

func (d *Dispatcher) cookieProxy(ctx context.Context, service *registry.Service, identityID string) (Outcome, error) {
	result, err := d.authenticateUpstream(ctx, service, identityID)
	if err != nil {
		return nil, err
	}
	return SetCookies{
		Cookies:     result.Cookies,
		RedirectURL: d.serviceOrigin(service),
	}, nil
}

func (d *Dispatcher) credentialDisplay(ctx context.Context, service *registry.Service, identityID string) (Outcome, error) {
	credential, err := d.repos.Credentials.Get(ctx, identityID, service.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.Wrap(apperrors.ErrForbidden, "no stored credential")
		}
		return nil, errors.Wrap(err, "[Dispatcher.credentialDisplay] credentials.Get")
	}
	return ShowCredentials{
		ServiceName: service.Name,
		ServiceURL:  d.serviceOrigin(service),
		Username:    credential.Username,
		Secret:      credential.Secret,
	}, nil
}

// authenticateUpstream performs the single bounded outbound call shared by
// the token-inject and cookie-proxy strategies. A timeout or rejection is
// an authentication failure, surfaced immediately and never retried.
func (d *Dispatcher) authenticateUpstream(ctx context.Context, service *registry.Service, identityID string) (*registry.AuthResult, error) {
	integration, ok := d.integrations.For(service)
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrNotConfigured, "no integration for %s", service.Subdomain)
	}

	credential, err := d.repos.Credentials.Get(ctx, identityID, service.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.Wrap(apperrors.ErrForbidden, "no account provisioned")
		}
		return nil, errors.Wrap(err, "[Dispatcher.authenticateUpstream] credentials.Get")
	}

	callCtx, cancel := context.WithTimeout(ctx, d.upstreamTimeout)
	defer cancel()

	result, err := integration.Authenticate(callCtx, credential.Username, credential.Secret)
	if err != nil {
		d.log.Warn().Err(err).Str("service", service.Name).Msg("upstream authenticate failed")
		return nil, errors.Wrap(apperrors.ErrUnauthorized, "upstream authenticate")
	}
	if !result.Success {
		d.log.Warn().Str("service", service.Name).Str("reason", result.Error).Msg("upstream authenticate rejected")
		return nil, errors.Wrap(apperrors.ErrUnauthorized, "upstream rejected")
	}
	return &result, nil
}

func (d *Dispatcher) serviceOrigin(service *registry.Service) string {
	return "https://" + service.Subdomain + "." + d.config.BaseDomain
}
