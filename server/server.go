// Package server is the HTTP surface of the broker: session cookies,
// admin and friend APIs, the forward-auth probe, and the unified
// service-click entry point.
package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/friendgate/friendgate/activity"
	"github.com/friendgate/friendgate/auth"
	"github.com/friendgate/friendgate/forwardauth"
	"github.com/friendgate/friendgate/friends"
	"github.com/friendgate/friendgate/internal/config"
	"github.com/friendgate/friendgate/registry"
	"github.com/friendgate/friendgate/sessions"
	"github.com/friendgate/friendgate/sso"
)

// Repos holds the repository dependencies shared by the server's
// components.
type Repos struct {
	Friends     friends.Repo
	Services    registry.ServiceRepo
	Grants      registry.GrantRepo
	Credentials registry.CredentialRepo
}

type Server struct {
	env        string
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	repos      Repos
	sessions   *sessions.Store
	auth       *auth.Service
	dispatcher *sso.Dispatcher
	gateway    *forwardauth.Gateway
	recorder   activity.Recorder
	log        zerolog.Logger
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithRecorder sets the activity recorder used for usage notes.
func WithRecorder(recorder activity.Recorder) Option {
	return func(s *Server) {
		s.recorder = recorder
	}
}

// WithLogger sets the server's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func New(config config.Config, repos Repos, sessionStore *sessions.Store, integrations registry.Integrations, options ...Option) (*Server, error) {
	authService, err := auth.NewService(repos.Friends)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] create auth service")
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		repos:    repos,
		sessions: sessionStore,
		auth:     authService,
		recorder: activity.Noop{},
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.dispatcher, err = sso.NewDispatcher(sso.Repos{
		Friends:     repos.Friends,
		Services:    repos.Services,
		Grants:      repos.Grants,
		Credentials: repos.Credentials,
	}, sessionStore, integrations, sso.Config{
		BaseDomain:    config.GetBaseDomain(),
		BasicAuthUser: config.GetBasicAuthUser(),
		BasicAuthPass: config.GetBasicAuthPass(),
	}, sso.WithLogger(s.log))
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] create dispatcher")
	}

	s.gateway, err = forwardauth.NewGateway(sessionStore, repos.Friends, repos.Services, repos.Grants,
		forwardauth.Config{
			BaseDomain: config.GetBaseDomain(),
			AdminEmail: config.GetAdminEmail(),
		},
		forwardauth.WithRecorder(s.recorder),
		forwardauth.WithLogger(s.log))
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] create gateway")
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
