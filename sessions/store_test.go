package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/sessions"
	fakesessionrepo "github.com/friendgate/friendgate/sessions/repofakes"
)

func setupStore(t *testing.T, now *time.Time) (*sessions.Store, *fakesessionrepo.FakeSessionRepo) {
	t.Helper()

	repo := fakesessionrepo.NewFakeSessionRepo()
	store, err := sessions.NewStore(repo, sessions.WithNowTime(func() time.Time { return *now }))
	require.NoError(t, err)
	return store, repo
}

func TestStore_CreateAndValidate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := setupStore(t, &now)
	ctx := context.Background()

	token, expiresAt, err := store.Create(ctx, sessions.TypeFriend, "friend-1", false, "test-agent")
	require.NoError(t, err)
	require.Len(t, token, 64)
	require.Equal(t, now.Add(sessions.ShortDuration), expiresAt)

	session, err := store.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sessions.TypeFriend, session.Type)
	require.Equal(t, "friend-1", session.SubjectID)
	require.Equal(t, "test-agent", session.UserAgent)
}

func TestStore_RememberExtendsDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _ := setupStore(t, &now)

	_, expiresAt, err := store.Create(context.Background(), sessions.TypeAdmin, "", true, "")
	require.NoError(t, err)
	require.Equal(t, now.Add(sessions.LongDuration), expiresAt)
}

func TestStore_TokensAreUnique(t *testing.T) {
	now := time.Now()
	store, _ := setupStore(t, &now)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, _, err := store.Create(ctx, sessions.TypeAdmin, "", false, "")
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestStore_LazyExpiryDeletesRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, repo := setupStore(t, &now)
	ctx := context.Background()

	token, _, err := store.Create(ctx, sessions.TypeFriend, "friend-1", false, "")
	require.NoError(t, err)

	// Advance past the short window.
	now = now.Add(sessions.ShortDuration + time.Minute)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	// The expired row was removed during the lookup.
	require.False(t, repo.Contains(token))

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStore_ValidateUnknownAndEmpty(t *testing.T) {
	now := time.Now()
	store, _ := setupStore(t, &now)

	_, err := store.Validate(context.Background(), "no-such-token")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = store.Validate(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	now := time.Now()
	store, _ := setupStore(t, &now)
	ctx := context.Background()

	token, _, err := store.Create(ctx, sessions.TypeAdmin, "", false, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStore_DeleteExpiredSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, repo := setupStore(t, &now)
	ctx := context.Background()

	short, _, err := store.Create(ctx, sessions.TypeFriend, "friend-1", false, "")
	require.NoError(t, err)
	long, _, err := store.Create(ctx, sessions.TypeFriend, "friend-2", true, "")
	require.NoError(t, err)

	now = now.Add(sessions.ShortDuration + time.Hour)

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.False(t, repo.Contains(short))
	require.True(t, repo.Contains(long))

	// Sweeping again removes nothing.
	removed, err = store.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}
