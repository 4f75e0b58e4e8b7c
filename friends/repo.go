package friends

import (
	"context"
	"time"
)

// Repo defines the persistence contract for friend records. Auth fields are
// mutated only through the setup/login flows; the rest of the record is
// owned by the admin CRUD collaborator.
type Repo interface {
	GetByID(ctx context.Context, id string) (*Friend, error)
	GetByToken(ctx context.Context, capabilityToken string) (*Friend, error)

	SetPasswordHash(ctx context.Context, id, hash string) error
	SetTOTPSecret(ctx context.Context, id, secret string) error
	SetLastVisit(ctx context.Context, id string, at time.Time) error

	// IncrementUsage bumps the usage counter by one and returns the new
	// count in a single atomic step. Never a read-then-write.
	IncrementUsage(ctx context.Context, id string) (int, error)
}
