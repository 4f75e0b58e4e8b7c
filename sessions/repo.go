package sessions

import (
	"context"
	"time"
)

// Repo defines the interface for durable session storage. The store must be
// externally shared (table keyed by token) so multiple broker instances see
// the same sessions.
type Repo interface {
	// Insert persists a new session record.
	Insert(ctx context.Context, session *Session) error

	// Get retrieves a session by token. Returns ErrSessionNotFound when the
	// token is unknown; expiry is the Store's concern, not the repo's.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token. Idempotent.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before the given time and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
