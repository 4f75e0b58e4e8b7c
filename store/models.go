package store

import (
	"time"

	"github.com/friendgate/friendgate/friends"
	"github.com/friendgate/friendgate/registry"
	"github.com/friendgate/friendgate/sessions"
)

// Row types are the single record shape at the data boundary. Raw tags
// (strategy, password mode) are parsed exactly once, in the conversions
// below, and nothing downstream branches on raw strings.

type sessionRow struct {
	Token     string `gorm:"primaryKey;size:64"`
	Type      string `gorm:"size:16;not null"`
	SubjectID string `gorm:"index"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index;not null"`
	UserAgent string
}

func (sessionRow) TableName() string { return "sessions" }

func (r *sessionRow) toDomain() *sessions.Session {
	return &sessions.Session{
		Token:     r.Token,
		Type:      sessions.Type(r.Type),
		SubjectID: r.SubjectID,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		UserAgent: r.UserAgent,
	}
}

func sessionRowFrom(session *sessions.Session) *sessionRow {
	return &sessionRow{
		Token:     session.Token,
		Type:      string(session.Type),
		SubjectID: session.SubjectID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		UserAgent: session.UserAgent,
	}
}

type friendRow struct {
	ID              string `gorm:"primaryKey;size:36"`
	Name            string `gorm:"not null"`
	CapabilityToken string `gorm:"uniqueIndex;not null"`
	PasswordHash    string
	TOTPSecret      string
	UsageCount      int    `gorm:"not null;default:0"`
	PasswordMode    string `gorm:"size:32;not null;default:never"`
	PasswordAfter   int
	AccessExpiresAt *time.Time
	LastVisit       *time.Time
	CreatedAt       time.Time
}

func (friendRow) TableName() string { return "friends" }

func (r *friendRow) toDomain(s *Store) *friends.Friend {
	mode, err := friends.ParsePasswordMode(r.PasswordMode)
	if err != nil {
		s.log.Warn().Err(err).Str("friend", r.ID).Msg("stored password mode unrecognized")
	}
	return &friends.Friend{
		ID:              r.ID,
		Name:            r.Name,
		CapabilityToken: r.CapabilityToken,
		PasswordHash:    r.PasswordHash,
		TOTPSecret:      r.TOTPSecret,
		UsageCount:      r.UsageCount,
		PasswordMode:    mode,
		PasswordAfter:   r.PasswordAfter,
		AccessExpiresAt: r.AccessExpiresAt,
		LastVisit:       r.LastVisit,
		CreatedAt:       r.CreatedAt,
	}
}

func friendRowFrom(friend *friends.Friend) *friendRow {
	return &friendRow{
		ID:              friend.ID,
		Name:            friend.Name,
		CapabilityToken: friend.CapabilityToken,
		PasswordHash:    friend.PasswordHash,
		TOTPSecret:      friend.TOTPSecret,
		UsageCount:      friend.UsageCount,
		PasswordMode:    friend.PasswordMode.String(),
		PasswordAfter:   friend.PasswordAfter,
		AccessExpiresAt: friend.AccessExpiresAt,
		LastVisit:       friend.LastVisit,
		CreatedAt:       friend.CreatedAt,
	}
}

type serviceRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Subdomain string `gorm:"uniqueIndex;not null"`
	Strategy  string `gorm:"size:32;not null;default:none"`
	URL       string
	CreatedAt time.Time
}

func (serviceRow) TableName() string { return "services" }

func (r *serviceRow) toDomain(s *Store) *registry.Service {
	strategy, err := registry.ParseStrategy(r.Strategy)
	if err != nil {
		s.log.Warn().Err(err).Str("service", r.Subdomain).Msg("stored auth strategy unrecognized")
	}
	return &registry.Service{
		ID:        r.ID,
		Name:      r.Name,
		Subdomain: r.Subdomain,
		Strategy:  strategy,
		URL:       r.URL,
	}
}

func serviceRowFrom(service *registry.Service) *serviceRow {
	return &serviceRow{
		ID:        service.ID,
		Name:      service.Name,
		Subdomain: service.Subdomain,
		Strategy:  string(service.Strategy),
		URL:       service.URL,
	}
}

type grantRow struct {
	FriendID  string `gorm:"primaryKey;size:36"`
	ServiceID string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
}

func (grantRow) TableName() string { return "grants" }

type credentialRow struct {
	FriendID  string `gorm:"primaryKey;size:36"`
	ServiceID string `gorm:"primaryKey;size:36"`
	Username  string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (credentialRow) TableName() string { return "service_credentials" }

type activityRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Action    string `gorm:"index;not null"`
	FriendID  string `gorm:"index"`
	ServiceID string
	Details   string
	CreatedAt time.Time `gorm:"index"`
}

func (activityRow) TableName() string { return "activity_log" }

func allModels() []any {
	return []any{
		&sessionRow{},
		&friendRow{},
		&serviceRow{},
		&grantRow{},
		&credentialRow{},
		&activityRow{},
	}
}
