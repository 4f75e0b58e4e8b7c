package fakefriendrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/friendgate/friendgate/friends"
	apperrors "github.com/friendgate/friendgate/internal/errors"
)

var _ friends.Repo = (*FakeFriendRepo)(nil)

type FakeFriendRepo struct {
	friends map[string]*friends.Friend
	tokens  map[string]string // capability token to friend id
	lock    sync.RWMutex
}

func NewFakeFriendRepo() *FakeFriendRepo {
	return &FakeFriendRepo{
		friends: make(map[string]*friends.Friend),
		tokens:  make(map[string]string),
	}
}

// Upsert stores a friend record directly (test setup helper).
func (fr *FakeFriendRepo) Upsert(friend *friends.Friend) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	if friend.ID == "" {
		friend.ID = uuid.New().String()
	}
	fr.friends[friend.ID] = friend
	fr.tokens[friend.CapabilityToken] = friend.ID
}

func (fr *FakeFriendRepo) GetByID(_ context.Context, id string) (*friends.Friend, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	friend, ok := fr.friends[id]
	if !ok {
		return nil, apperrors.ErrFriendNotFound
	}
	copied := *friend
	return &copied, nil
}

func (fr *FakeFriendRepo) GetByToken(_ context.Context, capabilityToken string) (*friends.Friend, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	id, ok := fr.tokens[capabilityToken]
	if !ok {
		return nil, apperrors.ErrFriendNotFound
	}
	copied := *fr.friends[id]
	return &copied, nil
}

func (fr *FakeFriendRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	friend, ok := fr.friends[id]
	if !ok {
		return apperrors.ErrFriendNotFound
	}
	friend.PasswordHash = hash
	return nil
}

func (fr *FakeFriendRepo) SetTOTPSecret(_ context.Context, id, secret string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	friend, ok := fr.friends[id]
	if !ok {
		return apperrors.ErrFriendNotFound
	}
	friend.TOTPSecret = secret
	return nil
}

func (fr *FakeFriendRepo) SetLastVisit(_ context.Context, id string, at time.Time) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	friend, ok := fr.friends[id]
	if !ok {
		return apperrors.ErrFriendNotFound
	}
	friend.LastVisit = &at
	return nil
}

func (fr *FakeFriendRepo) IncrementUsage(_ context.Context, id string) (int, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	friend, ok := fr.friends[id]
	if !ok {
		return 0, apperrors.ErrFriendNotFound
	}
	friend.UsageCount++
	return friend.UsageCount, nil
}
