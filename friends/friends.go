package friends

import (
	"fmt"
	"time"
)

// PasswordMode controls when a friend must present a password.
type PasswordMode int

const (
	// PasswordNever disables the password factor entirely.
	PasswordNever PasswordMode = iota
	// PasswordAlways requires the password on every visit, once one is set.
	PasswordAlways
	// PasswordAfterThreshold requires the password after the friend's
	// usage count crosses their configured threshold.
	PasswordAfterThreshold
)

// DefaultPasswordThreshold is used when a friend has no explicit threshold.
const DefaultPasswordThreshold = 10

func (m PasswordMode) String() string {
	switch m {
	case PasswordNever:
		return "never"
	case PasswordAlways:
		return "always"
	case PasswordAfterThreshold:
		return "after_threshold"
	}
	return "unknown"
}

// ParsePasswordMode maps a stored mode tag to its variant. Unknown tags
// degrade to PasswordNever, keeping the documented default-open stance,
// and the error makes the misconfiguration visible to the operator.
func ParsePasswordMode(raw string) (PasswordMode, error) {
	switch raw {
	case "never", "":
		return PasswordNever, nil
	case "always":
		return PasswordAlways, nil
	case "after_threshold":
		return PasswordAfterThreshold, nil
	}
	return PasswordNever, fmt.Errorf("unknown password mode %q", raw)
}

// Friend is a non-administrative subject holding a capability token for a
// curated subset of services.
type Friend struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	CapabilityToken string       `json:"-"` // portal entry link, never serialized
	PasswordHash    string       `json:"-"`
	TOTPSecret      string       `json:"-"`
	UsageCount      int          `json:"usage_count"`        // monotonic, incremented once per portal view
	PasswordMode    PasswordMode `json:"password_mode"`
	PasswordAfter   int          `json:"password_after,omitempty"` // threshold for PasswordAfterThreshold
	AccessExpiresAt *time.Time   `json:"access_expires_at,omitempty"`
	LastVisit       *time.Time   `json:"last_visit,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// Threshold returns the effective password threshold for this friend.
func (f *Friend) Threshold() int {
	if f.PasswordAfter > 0 {
		return f.PasswordAfter
	}
	return DefaultPasswordThreshold
}

// HasPassword reports whether a password has ever been configured.
func (f *Friend) HasPassword() bool {
	return f.PasswordHash != ""
}

// HasTOTP reports whether a TOTP secret has been enrolled.
func (f *Friend) HasTOTP() bool {
	return f.TOTPSecret != ""
}

// Expired reports whether the friend's access window has closed.
func (f *Friend) Expired(now time.Time) bool {
	return f.AccessExpiresAt != nil && now.After(*f.AccessExpiresAt)
}
