package fakeregistryrepo

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/registry"
)

var (
	_ registry.ServiceRepo    = (*FakeServiceRepo)(nil)
	_ registry.GrantRepo      = (*FakeGrantRepo)(nil)
	_ registry.CredentialRepo = (*FakeCredentialRepo)(nil)
)

type FakeServiceRepo struct {
	services map[string]*registry.Service // by ID
	lock     sync.RWMutex
}

func NewFakeServiceRepo() *FakeServiceRepo {
	return &FakeServiceRepo{services: make(map[string]*registry.Service)}
}

func (sr *FakeServiceRepo) Upsert(service *registry.Service) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.services[service.ID] = service
}

func (sr *FakeServiceRepo) GetByID(_ context.Context, id string) (*registry.Service, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	service, ok := sr.services[id]
	if !ok {
		return nil, apperrors.ErrServiceNotFound
	}
	copied := *service
	return &copied, nil
}

func (sr *FakeServiceRepo) GetBySubdomain(_ context.Context, subdomain string) (*registry.Service, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	for _, service := range sr.services {
		if service.Subdomain == subdomain {
			copied := *service
			return &copied, nil
		}
	}
	return nil, apperrors.ErrServiceNotFound
}

func (sr *FakeServiceRepo) List(_ context.Context) ([]*registry.Service, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	list := make([]*registry.Service, 0, len(sr.services))
	for _, service := range sr.services {
		copied := *service
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type grantKey struct{ friendID, serviceID string }

type FakeGrantRepo struct {
	grants   map[grantKey]bool
	services *FakeServiceRepo
	lock     sync.RWMutex
}

func NewFakeGrantRepo(services *FakeServiceRepo) *FakeGrantRepo {
	return &FakeGrantRepo{grants: make(map[grantKey]bool), services: services}
}

func (gr *FakeGrantRepo) Grant(friendID, serviceID string) {
	gr.lock.Lock()
	defer gr.lock.Unlock()
	gr.grants[grantKey{friendID, serviceID}] = true
}

func (gr *FakeGrantRepo) HasGrant(_ context.Context, friendID, serviceID string) (bool, error) {
	gr.lock.RLock()
	defer gr.lock.RUnlock()
	return gr.grants[grantKey{friendID, serviceID}], nil
}

func (gr *FakeGrantRepo) ServicesFor(ctx context.Context, friendID string) ([]*registry.Service, error) {
	gr.lock.RLock()
	keys := make([]grantKey, 0)
	for key := range gr.grants {
		if key.friendID == friendID {
			keys = append(keys, key)
		}
	}
	gr.lock.RUnlock()

	list := make([]*registry.Service, 0, len(keys))
	for _, key := range keys {
		service, err := gr.services.GetByID(ctx, key.serviceID)
		if err != nil {
			continue
		}
		list = append(list, service)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type FakeCredentialRepo struct {
	credentials map[grantKey]registry.Credential
	lock        sync.RWMutex
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{credentials: make(map[grantKey]registry.Credential)}
}

func (cr *FakeCredentialRepo) Get(_ context.Context, friendID, serviceID string) (*registry.Credential, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	credential, ok := cr.credentials[grantKey{friendID, serviceID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &credential, nil
}

func (cr *FakeCredentialRepo) Put(_ context.Context, friendID, serviceID string, credential registry.Credential) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	cr.credentials[grantKey{friendID, serviceID}] = credential
	return nil
}

func (cr *FakeCredentialRepo) Delete(_ context.Context, friendID, serviceID string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	delete(cr.credentials, grantKey{friendID, serviceID})
	return nil
}
