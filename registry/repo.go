package registry

import "context"

// ServiceRepo is the read side of the external service registry.
type ServiceRepo interface {
	GetByID(ctx context.Context, id string) (*Service, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Service, error)
	List(ctx context.Context) ([]*Service, error)
}

// GrantRepo answers existence queries over (friend, service) authorization
// records. The broker never creates or destroys grants.
type GrantRepo interface {
	HasGrant(ctx context.Context, friendID, serviceID string) (bool, error)

	// ServicesFor lists the services a friend holds grants for.
	ServicesFor(ctx context.Context, friendID string) ([]*Service, error)
}

// Credential is an opaque per-(friend, service) secondary credential pair,
// written by the account-provisioning collaborator and read only when a
// strategy needs it.
type Credential struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// CredentialRepo maps (friend, service) to an opaque credential blob. The
// broker stays ignorant of which services exist.
type CredentialRepo interface {
	Get(ctx context.Context, friendID, serviceID string) (*Credential, error)
	Put(ctx context.Context, friendID, serviceID string, credential Credential) error
	Delete(ctx context.Context, friendID, serviceID string) error
}
