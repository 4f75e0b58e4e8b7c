package forwardauth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/friendgate/friendgate/activity"
	"github.com/friendgate/friendgate/forwardauth"
	"github.com/friendgate/friendgate/friends"
	fakefriendrepo "github.com/friendgate/friendgate/friends/repofakes"
	"github.com/friendgate/friendgate/registry"
	fakeregistryrepo "github.com/friendgate/friendgate/registry/repofakes"
	"github.com/friendgate/friendgate/sessions"
	fakesessionrepo "github.com/friendgate/friendgate/sessions/repofakes"
)

type gatewayFixture struct {
	friendRepo  *fakefriendrepo.FakeFriendRepo
	serviceRepo *fakeregistryrepo.FakeServiceRepo
	grantRepo   *fakeregistryrepo.FakeGrantRepo
	store       *sessions.Store
	recorder    *recordingRecorder
	gateway     *forwardauth.Gateway
	friend      *friends.Friend
}

func setupGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		friendRepo:  fakefriendrepo.NewFakeFriendRepo(),
		serviceRepo: fakeregistryrepo.NewFakeServiceRepo(),
		recorder:    &recordingRecorder{},
	}
	f.grantRepo = fakeregistryrepo.NewFakeGrantRepo(f.serviceRepo)

	store, err := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())
	require.NoError(t, err)
	f.store = store

	gateway, err := forwardauth.NewGateway(store, f.friendRepo, f.serviceRepo, f.grantRepo,
		forwardauth.Config{BaseDomain: "example.com", AdminEmail: "owner@example.com"},
		forwardauth.WithRecorder(f.recorder))
	require.NoError(t, err)
	f.gateway = gateway

	f.friend = &friends.Friend{ID: "friend-1", Name: "annette", CapabilityToken: "cap-annette"}
	f.friendRepo.Upsert(f.friend)

	f.serviceRepo.Upsert(&registry.Service{ID: "svc-1", Name: "Wiki", Subdomain: "wiki", Strategy: registry.StrategyNone})
	return f
}

func (f *gatewayFixture) friendToken(t *testing.T) string {
	t.Helper()

	token, _, err := f.store.Create(context.Background(), sessions.TypeFriend, f.friend.ID, false, "")
	require.NoError(t, err)
	return token
}

func TestCheck_InvalidSessionDenies401(t *testing.T) {
	f := setupGatewayFixture(t)

	for _, token := range []string{"", "bogus"} {
		decision, err := f.gateway.Check(context.Background(), token, "wiki.example.com")
		require.NoError(t, err)
		require.False(t, decision.Allow)
		require.Equal(t, 401, decision.Status)
		require.Nil(t, decision.Hint)
	}
}

func TestCheck_AdminAllowsEverywhere(t *testing.T) {
	f := setupGatewayFixture(t)

	token, _, err := f.store.Create(context.Background(), sessions.TypeAdmin, "", false, "")
	require.NoError(t, err)

	for _, host := range []string{"wiki.example.com", "not-registered.example.com"} {
		decision, err := f.gateway.Check(context.Background(), token, host)
		require.NoError(t, err)
		require.True(t, decision.Allow)
		require.Equal(t, 200, decision.Status)
		require.Equal(t, "admin", decision.Headers[forwardauth.HeaderRemoteUser])
		require.Equal(t, "owner@example.com", decision.Headers[forwardauth.HeaderRemoteEmail])
	}
}

func TestCheck_GrantedFriendAllowsWithIdentityHeaders(t *testing.T) {
	f := setupGatewayFixture(t)
	f.grantRepo.Grant(f.friend.ID, "svc-1")

	decision, err := f.gateway.Check(context.Background(), f.friendToken(t), "wiki.example.com")
	require.NoError(t, err)
	require.True(t, decision.Allow)
	require.Equal(t, 200, decision.Status)
	require.Equal(t, "annette", decision.Headers[forwardauth.HeaderRemoteUser])
	require.Equal(t, "annette@friends.example.com", decision.Headers[forwardauth.HeaderRemoteEmail])

	entries := f.recorder.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, activity.ActionForwardAuth, entries[0].Action)
	require.Equal(t, "friend-1", entries[0].FriendID)
	require.Equal(t, "svc-1", entries[0].ServiceID)
}

// A valid friend session without a grant for the resolved subdomain is
// refused with a hint naming that subdomain.
func TestCheck_MissingGrantDenies403WithHint(t *testing.T) {
	f := setupGatewayFixture(t)

	decision, err := f.gateway.Check(context.Background(), f.friendToken(t), "wiki.example.com")
	require.NoError(t, err)
	require.False(t, decision.Allow)
	require.Equal(t, 403, decision.Status)
	require.NotNil(t, decision.Hint)
	require.Equal(t, "wiki", decision.Hint.Service)
	require.Equal(t, "https://example.com/?request_access=wiki", decision.Hint.RequestURL)
	require.Empty(t, f.recorder.Entries())
}

func TestCheck_UnknownServiceDenies403(t *testing.T) {
	f := setupGatewayFixture(t)

	decision, err := f.gateway.Check(context.Background(), f.friendToken(t), "mystery.example.com")
	require.NoError(t, err)
	require.False(t, decision.Allow)
	require.Equal(t, 403, decision.Status)
	require.Equal(t, "mystery", decision.Hint.Service)
}

func TestCheck_SubdomainResolution(t *testing.T) {
	f := setupGatewayFixture(t)
	f.grantRepo.Grant(f.friend.ID, "svc-1")
	token := f.friendToken(t)

	cases := []struct {
		host  string
		allow bool
	}{
		{host: "wiki.example.com", allow: true},
		{host: "WIKI.example.com", allow: true},
		{host: "wiki.example.com:443", allow: true},
		{host: "wiki.other.org", allow: true}, // first label outside the base domain
		{host: "files.example.com", allow: false},
	}
	for _, tc := range cases {
		decision, err := f.gateway.Check(context.Background(), token, tc.host)
		require.NoError(t, err)
		require.Equal(t, tc.allow, decision.Allow, "host %s", tc.host)
	}
}

// recordingRecorder captures activity entries for assertions.
type recordingRecorder struct {
	entries []activity.Entry
	lock    sync.Mutex
}

func (rr *recordingRecorder) Record(_ context.Context, entry activity.Entry) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	rr.entries = append(rr.entries, entry)
	return nil
}

func (rr *recordingRecorder) Entries() []activity.Entry {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	return append([]activity.Entry(nil), rr.entries...)
}
