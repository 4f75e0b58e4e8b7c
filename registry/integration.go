package registry

import "context"

// UserResult is the outcome of a user provisioning call.
type UserResult struct {
	Success  bool
	UserID   string
	Username string
	Password string
	Error    string
	Extra    map[string]string
}

// AuthResult is the outcome of an upstream authenticate call.
type AuthResult struct {
	Success bool
	Token   string            // bearer token for token-inject services
	Cookies map[string]string // session cookies for cookie-proxy services
	Extra   map[string]string // strategy-specific transit parameters
	Error   string
}

// StatusResult is the outcome of a connectivity check.
type StatusResult struct {
	Connected bool
	Name      string
	Error     string
}

// Integration is the mandatory contract every per-service collaborator
// satisfies, independent of its wire format. The broker depends only on
// this interface; the concrete API clients live outside the repository.
type Integration interface {
	CreateUser(ctx context.Context, name string) (UserResult, error)
	DeleteUser(ctx context.Context, userID string) (bool, error)
	Authenticate(ctx context.Context, identity, secret string) (AuthResult, error)
	CheckStatus(ctx context.Context) (StatusResult, error)
}

// Integrations resolves the collaborator for a service, when one is wired.
type Integrations interface {
	For(service *Service) (Integration, bool)
}

// StaticIntegrations is an Integrations implementation backed by a map
// keyed on service subdomain.
type StaticIntegrations map[string]Integration

func (si StaticIntegrations) For(service *Service) (Integration, bool) {
	if service == nil {
		return nil, false
	}
	integration, ok := si[service.Subdomain]
	return integration, ok
}
