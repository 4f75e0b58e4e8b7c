// Package auth implements progressive authentication for friends: free
// initial access, then escalating credential requirements driven by usage
// count and the factors the friend has actually configured.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/vault"
)

// warningLead is how many uses below the password threshold the usage
// warning starts.
const warningLead = 5

const minPasswordLength = 8

// Requirements is a snapshot of what a friend must prove right now.
type Requirements struct {
	NeedsPassword bool   `json:"needs_password"`
	NeedsTOTP     bool   `json:"needs_totp"`
	IsExpired     bool   `json:"is_expired"`
	UsageWarning  bool   `json:"usage_warning"`
	UsesRemaining int    `json:"uses_remaining,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Required reports whether any factor must be presented.
func (r Requirements) Required() bool {
	return r.NeedsPassword || r.NeedsTOTP
}

// Service owns the requirement computation, the usage counter, and the
// factor verification for friends.
type Service struct {
	friends friends.Repo
	nowTime func() time.Time // injectable for testing
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes the progressive auth engine.
func NewService(friendRepo friends.Repo, options ...Option) (*Service, error) {
	if friendRepo == nil {
		return nil, errors.New("[NewService] friend repo is required")
	}

	service := &Service{
		friends: friendRepo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// CheckRequirements computes the current requirement snapshot for a friend.
//
// Expiry dominates: an expired friend gets IsExpired and nothing else. The
// password factor is only ever required once a hash exists; a friend is
// never locked out of a factor they haven't been given the chance to
// configure. The TOTP factor is independent and additive.
func (s *Service) CheckRequirements(friend *friends.Friend) Requirements {
	var result Requirements

	if friend.Expired(s.nowTime()) {
		result.IsExpired = true
		result.Message = "Your access has expired"
		return result
	}

	threshold := friend.Threshold()

	switch friend.PasswordMode {
	case friends.PasswordNever:
		// nothing
	case friends.PasswordAlways:
		result.NeedsPassword = friend.HasPassword()
	case friends.PasswordAfterThreshold:
		if friend.UsageCount >= threshold-warningLead && friend.UsageCount < threshold {
			result.UsageWarning = true
			result.UsesRemaining = threshold - friend.UsageCount
		}
		result.NeedsPassword = friend.UsageCount >= threshold && friend.HasPassword()
	}

	result.NeedsTOTP = friend.HasTOTP()
	return result
}

// IncrementUsage bumps the friend's usage counter by one and returns the
// new count. Called exactly once per portal view; the repo performs the
// increment-and-read as a single atomic step.
func (s *Service) IncrementUsage(ctx context.Context, friendID string) (int, error) {
	count, err := s.friends.IncrementUsage(ctx, friendID)
	if err != nil {
		return 0, errors.Wrap(err, "[Service.IncrementUsage] friends.IncrementUsage")
	}
	return count, nil
}

// Authenticate verifies the factors flagged by the current requirement
// snapshot. A missing required input is a distinct error from a wrong
// value. Success mints no session; that is the caller's business.
func (s *Service) Authenticate(friend *friends.Friend, password, totpCode string) error {
	requirements := s.CheckRequirements(friend)

	if requirements.IsExpired {
		return apperrors.ErrAccessExpired
	}

	if requirements.NeedsPassword {
		if password == "" {
			return apperrors.ErrPasswordRequired
		}
		if !vault.VerifyPassword(password, friend.PasswordHash) {
			return apperrors.ErrInvalidPassword
		}
	}

	if requirements.NeedsTOTP {
		if totpCode == "" {
			return apperrors.ErrTOTPRequired
		}
		if !vault.VerifyTOTP(friend.TOTPSecret, totpCode) {
			return apperrors.ErrInvalidTOTP
		}
	}

	return nil
}

// SetPassword hashes and stores a new password for the friend.
func (s *Service) SetPassword(ctx context.Context, friend *friends.Friend, password string) error {
	if len(password) < minPasswordLength {
		return apperrors.ErrPasswordTooShort
	}

	hash, err := vault.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[Service.SetPassword] vault.HashPassword")
	}
	if err := s.friends.SetPasswordHash(ctx, friend.ID, hash); err != nil {
		return errors.Wrap(err, "[Service.SetPassword] friends.SetPasswordHash")
	}
	friend.PasswordHash = hash
	return nil
}

// EnrollTOTP generates and stores a fresh TOTP secret and returns it along
// with the otpauth enrollment URI for QR rendering. The enrollment is
// confirmed later with a live code via ConfirmTOTP.
func (s *Service) EnrollTOTP(ctx context.Context, friend *friends.Friend, issuer string) (string, string, error) {
	secret, err := vault.GenerateTOTPSecret()
	if err != nil {
		return "", "", errors.Wrap(err, "[Service.EnrollTOTP] vault.GenerateTOTPSecret")
	}
	if err := s.friends.SetTOTPSecret(ctx, friend.ID, secret); err != nil {
		return "", "", errors.Wrap(err, "[Service.EnrollTOTP] friends.SetTOTPSecret")
	}
	friend.TOTPSecret = secret

	uri := vault.TOTPEnrollmentURI(secret, friend.Name, issuer)
	return secret, uri, nil
}

// ConfirmTOTP verifies a live code against the enrolled secret.
func (s *Service) ConfirmTOTP(friend *friends.Friend, code string) error {
	if !friend.HasTOTP() {
		return apperrors.ErrTOTPNotEnrolled
	}
	if !vault.VerifyTOTP(friend.TOTPSecret, code) {
		return apperrors.ErrInvalidTOTP
	}
	return nil
}

// DisableTOTP removes the friend's TOTP secret.
func (s *Service) DisableTOTP(ctx context.Context, friend *friends.Friend) error {
	if err := s.friends.SetTOTPSecret(ctx, friend.ID, ""); err != nil {
		return errors.Wrap(err, "[Service.DisableTOTP] friends.SetTOTPSecret")
	}
	friend.TOTPSecret = ""
	return nil
}
