package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
)

// friendStore is the friends.Repo view over the shared database.
type friendStore struct {
	s *Store
}

var _ friends.Repo = friendStore{}

// Friends returns the friend repository view.
func (s *Store) Friends() friends.Repo {
	return friendStore{s}
}

func (fs friendStore) GetByID(ctx context.Context, id string) (*friends.Friend, error) {
	var row friendRow
	err := fs.s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrFriendNotFound)
	}
	return row.toDomain(fs.s), nil
}

func (fs friendStore) GetByToken(ctx context.Context, capabilityToken string) (*friends.Friend, error) {
	var row friendRow
	err := fs.s.db.WithContext(ctx).Where("capability_token = ?", capabilityToken).First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrFriendNotFound)
	}
	return row.toDomain(fs.s), nil
}

func (fs friendStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	return fs.updateColumn(ctx, id, "password_hash", hash)
}

func (fs friendStore) SetTOTPSecret(ctx context.Context, id, secret string) error {
	return fs.updateColumn(ctx, id, "totp_secret", secret)
}

func (fs friendStore) SetLastVisit(ctx context.Context, id string, at time.Time) error {
	return fs.updateColumn(ctx, id, "last_visit", at)
}

func (fs friendStore) updateColumn(ctx context.Context, id, column string, value any) error {
	result := fs.s.db.WithContext(ctx).Model(&friendRow{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "[friendStore.updateColumn] update %s", column)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrFriendNotFound
	}
	return nil
}

// IncrementUsage bumps the counter and reads the new value in one
// statement. RETURNING is supported by both backends in use (SQLite
// >= 3.35 and PostgreSQL).
func (fs friendStore) IncrementUsage(ctx context.Context, id string) (int, error) {
	var count int
	result := fs.s.db.WithContext(ctx).
		Raw("UPDATE friends SET usage_count = usage_count + 1 WHERE id = ? RETURNING usage_count", id).
		Scan(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "[friendStore.IncrementUsage] update counter")
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.ErrFriendNotFound
	}
	return count, nil
}

// CreateFriend provisions a friend record. IDs are generated when absent.
// Used by the provisioning surface and tests.
func (s *Store) CreateFriend(ctx context.Context, friend *friends.Friend) error {
	if friend.ID == "" {
		friend.ID = uuid.New().String()
	}
	if friend.CreatedAt.IsZero() {
		friend.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(friendRowFrom(friend)).Error; err != nil {
		return errors.Wrap(err, "[Store.CreateFriend] create friend")
	}
	return nil
}
