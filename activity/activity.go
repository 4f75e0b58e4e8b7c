// Package activity records best-effort usage notes. Recording failures are
// logged by callers and never affect the request that triggered them.
package activity

import (
	"context"
	"time"
)

// Known actions.
const (
	ActionPageView       = "page_view"
	ActionServiceClick   = "service_click"
	ActionAuthLogin      = "auth_login"
	ActionCredentialView = "credential_view"
	ActionForwardAuth    = "forward_auth"
)

// Entry is a single activity note.
type Entry struct {
	Action    string
	FriendID  string
	ServiceID string
	Details   string
	CreatedAt time.Time
}

// Recorder is the collaborator contract for activity notes.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Noop discards all entries.
type Noop struct{}

func (Noop) Record(context.Context, Entry) error { return nil }
