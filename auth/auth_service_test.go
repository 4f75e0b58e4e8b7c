package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/friendgate/friendgate/auth"
	"github.com/friendgate/friendgate/friends"
	fakefriendrepo "github.com/friendgate/friendgate/friends/repofakes"
	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/vault"
)

type testFixture struct {
	repo    *fakefriendrepo.FakeFriendRepo
	service *auth.Service
	now     time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo: fakefriendrepo.NewFakeFriendRepo(),
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	service, err := auth.NewService(f.repo, auth.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.service = service
	return f
}

func (f *testFixture) createFriend(t *testing.T, friend *friends.Friend) *friends.Friend {
	t.Helper()

	if friend.CapabilityToken == "" {
		friend.CapabilityToken = "cap-" + friend.Name
	}
	f.repo.Upsert(friend)
	return friend
}

func hashOf(t *testing.T, password string) string {
	t.Helper()

	hash, err := vault.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestCheckRequirements_ExpiryDominates(t *testing.T) {
	f := setupTestFixture(t)

	past := f.now.Add(-time.Hour)
	friend := &friends.Friend{
		Name:            "annette",
		PasswordMode:    friends.PasswordAfterThreshold,
		UsageCount:      50,
		PasswordHash:    hashOf(t, "secret-pass"),
		TOTPSecret:      "JBSWY3DPEHPK3PXP",
		AccessExpiresAt: &past,
	}

	req := f.service.CheckRequirements(friend)
	require.True(t, req.IsExpired)
	require.False(t, req.NeedsPassword)
	require.False(t, req.NeedsTOTP)
	require.False(t, req.UsageWarning)
	require.NotEmpty(t, req.Message)
}

func TestCheckRequirements_PasswordModes(t *testing.T) {
	f := setupTestFixture(t)
	hash := hashOf(t, "secret-pass")

	t.Run("never", func(t *testing.T) {
		req := f.service.CheckRequirements(&friends.Friend{PasswordMode: friends.PasswordNever, PasswordHash: hash, UsageCount: 100})
		require.False(t, req.NeedsPassword)
	})

	t.Run("always with a configured password", func(t *testing.T) {
		req := f.service.CheckRequirements(&friends.Friend{PasswordMode: friends.PasswordAlways, PasswordHash: hash})
		require.True(t, req.NeedsPassword)
	})

	t.Run("always without a configured password stays open", func(t *testing.T) {
		req := f.service.CheckRequirements(&friends.Friend{PasswordMode: friends.PasswordAlways})
		require.False(t, req.NeedsPassword)
	})
}

func TestCheckRequirements_ThresholdBands(t *testing.T) {
	f := setupTestFixture(t)
	hash := hashOf(t, "secret-pass")

	// Threshold 10, warning lead 5.
	cases := []struct {
		usage         int
		wantWarning   bool
		wantPassword  bool
		wantRemaining int
	}{
		{usage: 0, wantWarning: false, wantPassword: false},
		{usage: 4, wantWarning: false, wantPassword: false},
		{usage: 5, wantWarning: true, wantPassword: false, wantRemaining: 5},
		{usage: 9, wantWarning: true, wantPassword: false, wantRemaining: 1},
		{usage: 10, wantWarning: false, wantPassword: true},
		{usage: 25, wantWarning: false, wantPassword: true},
	}
	for _, tc := range cases {
		friend := &friends.Friend{
			PasswordMode:  friends.PasswordAfterThreshold,
			PasswordAfter: 10,
			PasswordHash:  hash,
			UsageCount:    tc.usage,
		}
		req := f.service.CheckRequirements(friend)
		require.Equal(t, tc.wantWarning, req.UsageWarning, "usage %d", tc.usage)
		require.Equal(t, tc.wantPassword, req.NeedsPassword, "usage %d", tc.usage)
		if tc.wantWarning {
			require.Equal(t, tc.wantRemaining, req.UsesRemaining, "usage %d", tc.usage)
		}
	}
}

// Soft-quota scenario: threshold 10, usage driven to 7 warns with 3 uses
// remaining; crossing the threshold with no password ever configured keeps
// access open.
func TestCheckRequirements_SoftQuotaScenario(t *testing.T) {
	f := setupTestFixture(t)

	friend := f.createFriend(t, &friends.Friend{
		Name:          "annette",
		PasswordMode:  friends.PasswordAfterThreshold,
		PasswordAfter: 10,
	})

	ctx := context.Background()
	var count int
	var err error
	for i := 0; i < 7; i++ {
		count, err = f.service.IncrementUsage(ctx, friend.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 7, count)

	current, err := f.repo.GetByID(ctx, friend.ID)
	require.NoError(t, err)

	req := f.service.CheckRequirements(current)
	require.True(t, req.UsageWarning)
	require.Equal(t, 3, req.UsesRemaining)
	require.False(t, req.NeedsPassword)

	for i := 7; i < 10; i++ {
		_, err = f.service.IncrementUsage(ctx, friend.ID)
		require.NoError(t, err)
	}
	current, err = f.repo.GetByID(ctx, friend.ID)
	require.NoError(t, err)

	// At the threshold with no password configured: still open, documented
	// default-open behavior rather than a lockout.
	req = f.service.CheckRequirements(current)
	require.False(t, req.NeedsPassword)
	require.False(t, req.UsageWarning)
}

func TestCheckRequirements_TOTPIsAdditive(t *testing.T) {
	f := setupTestFixture(t)
	hash := hashOf(t, "secret-pass")

	req := f.service.CheckRequirements(&friends.Friend{
		PasswordMode: friends.PasswordAlways,
		PasswordHash: hash,
		TOTPSecret:   "JBSWY3DPEHPK3PXP",
	})
	require.True(t, req.NeedsPassword)
	require.True(t, req.NeedsTOTP)

	req = f.service.CheckRequirements(&friends.Friend{
		PasswordMode: friends.PasswordNever,
		TOTPSecret:   "JBSWY3DPEHPK3PXP",
	})
	require.False(t, req.NeedsPassword)
	require.True(t, req.NeedsTOTP)
}

func TestAuthenticate(t *testing.T) {
	f := setupTestFixture(t)

	secret, err := vault.GenerateTOTPSecret()
	require.NoError(t, err)

	friend := &friends.Friend{
		Name:         "annette",
		PasswordMode: friends.PasswordAlways,
		PasswordHash: hashOf(t, "secret-pass"),
		TOTPSecret:   secret,
	}

	code, err := vault.GenerateTOTP(secret)
	require.NoError(t, err)

	t.Run("both factors correct", func(t *testing.T) {
		require.NoError(t, f.service.Authenticate(friend, "secret-pass", code))
	})

	t.Run("missing password is a distinct client error", func(t *testing.T) {
		err := f.service.Authenticate(friend, "", code)
		require.ErrorIs(t, err, apperrors.ErrPasswordRequired)
	})

	t.Run("wrong password", func(t *testing.T) {
		err := f.service.Authenticate(friend, "wrong", code)
		require.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("missing totp is a distinct client error", func(t *testing.T) {
		err := f.service.Authenticate(friend, "secret-pass", "")
		require.ErrorIs(t, err, apperrors.ErrTOTPRequired)
	})

	t.Run("wrong totp", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "000001"
		}
		err := f.service.Authenticate(friend, "secret-pass", wrong)
		require.ErrorIs(t, err, apperrors.ErrInvalidTOTP)
	})

	t.Run("no factors required accepts empty input", func(t *testing.T) {
		open := &friends.Friend{Name: "bob", PasswordMode: friends.PasswordNever}
		require.NoError(t, f.service.Authenticate(open, "", ""))
	})

	t.Run("expired access refuses all factors", func(t *testing.T) {
		past := f.now.Add(-time.Minute)
		expired := &friends.Friend{Name: "carol", AccessExpiresAt: &past}
		err := f.service.Authenticate(expired, "", "")
		require.ErrorIs(t, err, apperrors.ErrAccessExpired)
	})
}

func TestSetPassword(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	friend := f.createFriend(t, &friends.Friend{Name: "annette", PasswordMode: friends.PasswordAlways})

	t.Run("too short", func(t *testing.T) {
		err := f.service.SetPassword(ctx, friend, "short")
		require.ErrorIs(t, err, apperrors.ErrPasswordTooShort)
	})

	t.Run("stores a verifiable hash", func(t *testing.T) {
		require.NoError(t, f.service.SetPassword(ctx, friend, "long enough password"))

		stored, err := f.repo.GetByID(ctx, friend.ID)
		require.NoError(t, err)
		require.True(t, vault.VerifyPassword("long enough password", stored.PasswordHash))
	})
}

func TestTOTPEnrollment(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	friend := f.createFriend(t, &friends.Friend{Name: "annette"})

	secret, uri, err := f.service.EnrollTOTP(ctx, friend, "portal.example.com")
	require.NoError(t, err)
	require.NotEmpty(t, secret)
	require.Contains(t, uri, "otpauth://totp/")
	require.Contains(t, uri, secret)

	code, err := vault.GenerateTOTP(secret)
	require.NoError(t, err)
	require.NoError(t, f.service.ConfirmTOTP(friend, code))

	require.ErrorIs(t, f.service.ConfirmTOTP(friend, "000000"), apperrors.ErrInvalidTOTP)

	require.NoError(t, f.service.DisableTOTP(ctx, friend))
	require.ErrorIs(t, f.service.ConfirmTOTP(friend, code), apperrors.ErrTOTPNotEnrolled)
}
