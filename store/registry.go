package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	apperrors "github.com/friendgate/friendgate/internal/errors"
	"github.com/friendgate/friendgate/registry"
)

// serviceStore, grantStore and credentialStore are the registry repo
// views over the shared database.
type serviceStore struct {
	s *Store
}

type grantStore struct {
	s *Store
}

type credentialStore struct {
	s *Store
}

var (
	_ registry.ServiceRepo    = serviceStore{}
	_ registry.GrantRepo      = grantStore{}
	_ registry.CredentialRepo = credentialStore{}
)

// Services returns the service repository view.
func (s *Store) Services() registry.ServiceRepo {
	return serviceStore{s}
}

// Grants returns the grant repository view.
func (s *Store) Grants() registry.GrantRepo {
	return grantStore{s}
}

// Credentials returns the per-service credential repository view.
func (s *Store) Credentials() registry.CredentialRepo {
	return credentialStore{s}
}

func (ss serviceStore) GetByID(ctx context.Context, id string) (*registry.Service, error) {
	var row serviceRow
	err := ss.s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrServiceNotFound)
	}
	return row.toDomain(ss.s), nil
}

func (ss serviceStore) GetBySubdomain(ctx context.Context, subdomain string) (*registry.Service, error) {
	var row serviceRow
	err := ss.s.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrServiceNotFound)
	}
	return row.toDomain(ss.s), nil
}

func (ss serviceStore) List(ctx context.Context) ([]*registry.Service, error) {
	var rows []serviceRow
	if err := ss.s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "[serviceStore.List] list services")
	}
	list := make([]*registry.Service, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toDomain(ss.s))
	}
	return list, nil
}

// UpsertService registers or updates a service by subdomain. Used by the
// provisioning surface and tests.
func (s *Store) UpsertService(ctx context.Context, service *registry.Service) error {
	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	row := serviceRowFrom(service)
	row.CreatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subdomain"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "strategy", "url"}),
	}).Create(row).Error
	if err != nil {
		return errors.Wrap(err, "[Store.UpsertService] upsert service")
	}
	return nil
}

func (gs grantStore) HasGrant(ctx context.Context, friendID, serviceID string) (bool, error) {
	var count int64
	err := gs.s.db.WithContext(ctx).Model(&grantRow{}).
		Where("friend_id = ? AND service_id = ?", friendID, serviceID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "[grantStore.HasGrant] count grants")
	}
	return count > 0, nil
}

func (gs grantStore) ServicesFor(ctx context.Context, friendID string) ([]*registry.Service, error) {
	var rows []serviceRow
	err := gs.s.db.WithContext(ctx).Model(&serviceRow{}).
		Joins("JOIN grants ON grants.service_id = services.id").
		Where("grants.friend_id = ?", friendID).
		Order("services.name").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "[grantStore.ServicesFor] list granted services")
	}
	list := make([]*registry.Service, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toDomain(gs.s))
	}
	return list, nil
}

// AddGrant records a (friend, service) authorization. Idempotent.
func (s *Store) AddGrant(ctx context.Context, friendID, serviceID string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grantRow{FriendID: friendID, ServiceID: serviceID, CreatedAt: time.Now()}).Error
	if err != nil {
		return errors.Wrap(err, "[Store.AddGrant] create grant")
	}
	return nil
}

// RemoveGrant revokes a (friend, service) authorization. Idempotent.
func (s *Store) RemoveGrant(ctx context.Context, friendID, serviceID string) error {
	err := s.db.WithContext(ctx).
		Where("friend_id = ? AND service_id = ?", friendID, serviceID).
		Delete(&grantRow{}).Error
	if err != nil {
		return errors.Wrap(err, "[Store.RemoveGrant] delete grant")
	}
	return nil
}

func (cs credentialStore) Get(ctx context.Context, friendID, serviceID string) (*registry.Credential, error) {
	var row credentialRow
	err := cs.s.db.WithContext(ctx).
		Where("friend_id = ? AND service_id = ?", friendID, serviceID).
		First(&row).Error
	if err != nil {
		return nil, convertNotFoundError(err, apperrors.ErrNotFound)
	}
	return &registry.Credential{Username: row.Username, Secret: row.Secret}, nil
}

func (cs credentialStore) Put(ctx context.Context, friendID, serviceID string, credential registry.Credential) error {
	err := cs.s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "friend_id"}, {Name: "service_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "secret", "updated_at"}),
	}).Create(&credentialRow{
		FriendID:  friendID,
		ServiceID: serviceID,
		Username:  credential.Username,
		Secret:    credential.Secret,
	}).Error
	if err != nil {
		return errors.Wrap(err, "[credentialStore.Put] upsert credential")
	}
	return nil
}

func (cs credentialStore) Delete(ctx context.Context, friendID, serviceID string) error {
	err := cs.s.db.WithContext(ctx).
		Where("friend_id = ? AND service_id = ?", friendID, serviceID).
		Delete(&credentialRow{}).Error
	if err != nil {
		return errors.Wrap(err, "[credentialStore.Delete] delete credential")
	}
	return nil
}
