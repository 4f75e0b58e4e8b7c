package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/friendgate/friendgate/activity"
)

// activityStore is the activity.Recorder view over the shared database.
type activityStore struct {
	s *Store
}

var _ activity.Recorder = activityStore{}

// Activity returns the activity recorder view.
func (s *Store) Activity() activity.Recorder {
	return activityStore{s}
}

func (as activityStore) Record(ctx context.Context, entry activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := as.s.db.WithContext(ctx).Create(&activityRow{
		Action:    entry.Action,
		FriendID:  entry.FriendID,
		ServiceID: entry.ServiceID,
		Details:   entry.Details,
		CreatedAt: createdAt,
	}).Error
	if err != nil {
		return errors.Wrap(err, "[activityStore.Record] create entry")
	}
	return nil
}
