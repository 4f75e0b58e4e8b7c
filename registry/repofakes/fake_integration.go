package fakeregistryrepo

import (
	"context"
	"sync"

	"github.com/friendgate/friendgate/registry"
)

var _ registry.Integration = (*FakeIntegration)(nil)

// FakeIntegration is a scriptable per-service collaborator for tests.
type FakeIntegration struct {
	AuthResult    registry.AuthResult
	AuthErr       error
	StatusResult  registry.StatusResult
	UserResult    registry.UserResult
	DeleteOK      bool
	authCallCount int
	lastIdentity  string
	lastSecret    string
	lock          sync.Mutex
}

func (fi *FakeIntegration) CreateUser(_ context.Context, _ string) (registry.UserResult, error) {
	return fi.UserResult, nil
}

func (fi *FakeIntegration) DeleteUser(_ context.Context, _ string) (bool, error) {
	return fi.DeleteOK, nil
}

func (fi *FakeIntegration) Authenticate(_ context.Context, identity, secret string) (registry.AuthResult, error) {
	fi.lock.Lock()
	defer fi.lock.Unlock()

	fi.authCallCount++
	fi.lastIdentity = identity
	fi.lastSecret = secret
	if fi.AuthErr != nil {
		return registry.AuthResult{}, fi.AuthErr
	}
	return fi.AuthResult, nil
}

func (fi *FakeIntegration) CheckStatus(_ context.Context) (registry.StatusResult, error) {
	return fi.StatusResult, nil
}

// AuthCalls returns how many Authenticate calls were made.
func (fi *FakeIntegration) AuthCalls() int {
	fi.lock.Lock()
	defer fi.lock.Unlock()
	return fi.authCallCount
}

// LastAuth returns the identity and secret of the most recent call.
func (fi *FakeIntegration) LastAuth() (string, string) {
	fi.lock.Lock()
	defer fi.lock.Unlock()
	return fi.lastIdentity, fi.lastSecret
}
