package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Insert(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	copied := *session
	sr.sessions[session.Token] = &copied
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, token string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[token]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, token string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.sessions, token)
	return nil
}

func (sr *FakeSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	var removed int64
	for token, session := range sr.sessions {
		if session.ExpiresAt.Before(before) {
			delete(sr.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Contains reports whether a token is still stored (test inspection helper).
func (sr *FakeSessionRepo) Contains(token string) bool {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	_, ok := sr.sessions[token]
	return ok
}
