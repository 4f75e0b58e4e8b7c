package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/friendgate/friendgate/internal/errors"
)

const (
	// ShortDuration is the session window without "remember me".
	ShortDuration = 24 * time.Hour
	// LongDuration is the "remember me" session window.
	LongDuration = 30 * 24 * time.Hour

	tokenLength = 32 // bytes of entropy; hex-encoded to 64 chars
)

// Store manages opaque-token sessions on top of a durable Repo.
type Store struct {
	repo    Repo
	nowTime func() time.Time // injectable for testing
}

// StoreOption modifies a Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore initializes a session Store with the required repo.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] session repo is required")
	}

	store := &Store{
		repo:    repo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Create mints a new session for the given subject. Duration is LongDuration
// when remember is set, ShortDuration otherwise.
func (s *Store) Create(ctx context.Context, typ Type, subjectID string, remember bool, userAgent string) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Store.Create] generateToken")
	}

	duration := ShortDuration
	if remember {
		duration = LongDuration
	}

	now := s.nowTime()
	session := &Session{
		Token:     token,
		Type:      typ,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
		UserAgent: userAgent,
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Store.Create] repo.Insert")
	}
	return token, session.ExpiresAt, nil
}

// Validate resolves a token to a live session. Expiry is checked lazily: an
// expired record is deleted during the lookup and reported as absent.
func (s *Store) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	session, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "[Store.Validate] repo.Get")
	}

	if session.Expired(s.nowTime()) {
		_ = s.repo.Delete(ctx, token)
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return errors.Wrap(err, "[Store.Delete] repo.Delete")
	}
	return nil
}

// DeleteExpired reclaims storage held by expired sessions. Correctness never
// depends on this running; Validate already treats expired rows as absent.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.nowTime())
	if err != nil {
		return 0, errors.Wrap(err, "[Store.DeleteExpired] repo.DeleteExpired")
	}
	return removed, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
