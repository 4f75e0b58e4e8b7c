package sessions

import "time"

// Type distinguishes the two subject kinds a session can bind.
type Type string

const (
	TypeAdmin  Type = "admin"
	TypeFriend Type = "friend"
)

// Session binds an opaque token to a subject identity and an expiry.
// A session past ExpiresAt is invalid and treated as absent everywhere.
type Session struct {
	Token     string    // opaque, unique, 256-bit random hex
	Type      Type      // admin or friend
	SubjectID string    // friend ID when Type is TypeFriend
	CreatedAt time.Time
	ExpiresAt time.Time
	UserAgent string
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
