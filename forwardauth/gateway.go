// Package forwardauth implements the decision function a reverse proxy
// probes before letting a request through to a protected subdomain.
package forwardauth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/friendgate/friendgate/activity"
	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/registry"
	"github.com/friendgate/friendgate/sessions"
)

// Identity headers emitted on an allow decision. Proxies copy these onto
// the upstream request.
const (
	HeaderRemoteUser  = "X-Remote-User"
	HeaderRemoteEmail = "X-Remote-Email"
)

// Config carries the static configuration a probe decision needs.
type Config struct {
	BaseDomain string // services live on subdomains of it
	AdminEmail string // emitted as the admin identity header
}

// Hint is the machine-readable body attached to a deny, pointing the
// caller at the access-request flow for the service it was refused.
type Hint struct {
	Service    string `json:"service"`
	RequestURL string `json:"request_url"`
	Error      string `json:"error"`
}

// Decision is the gateway's verdict for one probe.
type Decision struct {
	Allow   bool
	Status  int
	Headers map[string]string // identity headers, allow only
	Hint    *Hint             // deny detail, 403 only
}

// Gateway decides forward-auth probes. It never mutates broker state
// beyond a best-effort activity note.
type Gateway struct {
	store    *sessions.Store
	friends  friends.Repo
	services registry.ServiceRepo
	grants   registry.GrantRepo
	recorder activity.Recorder
	config   Config
	log      zerolog.Logger
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithRecorder sets the activity recorder used for probe notes.
func WithRecorder(recorder activity.Recorder) GatewayOption {
	return func(g *Gateway) {
		g.recorder = recorder
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(log zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = log
	}
}

// NewGateway initializes a Gateway with required dependencies.
func NewGateway(store *sessions.Store, friendRepo friends.Repo, serviceRepo registry.ServiceRepo, grantRepo registry.GrantRepo, config Config, options ...GatewayOption) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("[NewGateway] session store is required")
	}
	if friendRepo == nil {
		return nil, errors.New("[NewGateway] friend repo is required")
	}
	if serviceRepo == nil {
		return nil, errors.New("[NewGateway] service repo is required")
	}
	if grantRepo == nil {
		return nil, errors.New("[NewGateway] grant repo is required")
	}

	gateway := &Gateway{
		store:    store,
		friends:  friendRepo,
		services: serviceRepo,
		grants:   grantRepo,
		recorder: activity.Noop{},
		config:   config,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(gateway)
	}
	return gateway, nil
}

// Check resolves the probe's session token against the host the proxy is
// asking about. An invalid session denies with 401; a valid friend session
// without a grant denies with 403 and a hint naming the service. Repository
// failures are returned as errors, not mapped to a deny.
func (g *Gateway) Check(ctx context.Context, token, forwardedHost string) (Decision, error) {
	session, err := g.store.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return Decision{Allow: false, Status: 401}, nil
		}
		return Decision{}, errors.Wrap(err, "[Gateway.Check] store.Validate")
	}

	if session.Type == sessions.TypeAdmin {
		return Decision{
			Allow:  true,
			Status: 200,
			Headers: map[string]string{
				HeaderRemoteUser:  "admin",
				HeaderRemoteEmail: g.config.AdminEmail,
			},
		}, nil
	}

	friend, err := g.friends.GetByID(ctx, session.SubjectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrFriendNotFound) {
			return Decision{Allow: false, Status: 401}, nil
		}
		return Decision{}, errors.Wrap(err, "[Gateway.Check] friends.GetByID")
	}

	subdomain := g.subdomainOf(forwardedHost)
	service, err := g.services.GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, apperrors.ErrServiceNotFound) {
			return g.deny(subdomain, "unknown service"), nil
		}
		return Decision{}, errors.Wrap(err, "[Gateway.Check] services.GetBySubdomain")
	}

	granted, err := g.grants.HasGrant(ctx, friend.ID, service.ID)
	if err != nil {
		return Decision{}, errors.Wrap(err, "[Gateway.Check] grants.HasGrant")
	}
	if !granted {
		return g.deny(subdomain, "no access grant"), nil
	}

	g.note(ctx, friend, service, forwardedHost)

	return Decision{
		Allow:  true,
		Status: 200,
		Headers: map[string]string{
			HeaderRemoteUser:  friend.Name,
			HeaderRemoteEmail: friend.Name + "@friends." + g.config.BaseDomain,
		},
	}, nil
}

func (g *Gateway) deny(subdomain, reason string) Decision {
	return Decision{
		Allow:  false,
		Status: 403,
		Hint: &Hint{
			Service:    subdomain,
			RequestURL: "https://" + g.config.BaseDomain + "/?request_access=" + subdomain,
			Error:      reason,
		},
	}
}

// note records the probe best effort. A recorder failure is logged and
// never affects the decision already made.
func (g *Gateway) note(ctx context.Context, friend *friends.Friend, service *registry.Service, host string) {
	err := g.recorder.Record(ctx, activity.Entry{
		Action:    activity.ActionForwardAuth,
		FriendID:  friend.ID,
		ServiceID: service.ID,
		Details:   host,
	})
	if err != nil {
		g.log.Warn().Err(err).Str("host", host).Msg("activity note failed")
	}
}

// subdomainOf extracts the service subdomain from the forwarded host.
// Hosts outside the base domain fall back to their first label.
func (g *Gateway) subdomainOf(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if g.config.BaseDomain != "" {
		if trimmed, found := strings.CutSuffix(host, "."+g.config.BaseDomain); found {
			return trimmed
		}
	}
	sub, _, _ := strings.Cut(host, ".")
	return sub
}
