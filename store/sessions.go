package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/sessions"
)

// sessionStore is the sessions.Repo view over the shared database.
type sessionStore struct {
	s *Store
}

var _ sessions.Repo = sessionStore{}

// Sessions returns the session repository view.
func (s *Store) Sessions() sessions.Repo {
	return sessionStore{s}
}

func (ss sessionStore) Insert(ctx context.Context, session *sessions.Session) error {
	if err := ss.s.db.WithContext(ctx).Create(sessionRowFrom(session)).Error; err != nil {
		return errors.Wrap(err, "[sessionStore.Insert] create session")
	}
	return nil
}

func (ss sessionStore) Get(ctx context.Context, token string) (*sessions.Session, error) {
	var row sessionRow
	err := ss.s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrSessionNotFound)
	}
	return row.toDomain(), nil
}

func (ss sessionStore) Delete(ctx context.Context, token string) error {
	if err := ss.s.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionRow{}).Error; err != nil {
		return errors.Wrap(err, "[sessionStore.Delete] delete session")
	}
	return nil
}

func (ss sessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := ss.s.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&sessionRow{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "[sessionStore.DeleteExpired] delete sessions")
	}
	return result.RowsAffected, nil
}
