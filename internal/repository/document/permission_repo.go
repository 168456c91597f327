package document

import (
	"context"
	"errors"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
)

type permissionRepository struct {
	store repository.DocumentStore
}

func NewPermissionRepository(store repository.DocumentStore) repository.PermissionRepository {
	return &permissionRepository{store: store}
}

// Get returns empty permissions for users that never granted anything.
func (r *permissionRepository) Get(ctx context.Context, userID string) (domain.HealthPermissions, error) {
	doc, err := r.store.Get(ctx, repository.CollectionPermissions, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.HealthPermissions{UserID: userID}, nil
	}
	if err != nil {
		return domain.HealthPermissions{}, err
	}
	var perms domain.HealthPermissions
	if err := decode(doc, &perms); err != nil {
		return domain.HealthPermissions{}, err
	}
	perms.UserID = userID
	return perms, nil
}

// Save replaces the user's permission document.
func (r *permissionRepository) Save(ctx context.Context, perms domain.HealthPermissions) error {
	if perms.UserID == "" {
		return repository.ErrInvalidDocument
	}
	if perms.Granted == nil {
		perms.Granted = []domain.SampleType{}
	}
	fields, err := encode(perms)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, repository.CollectionPermissions, perms.UserID, fields, false)
}

func (r *permissionRepository) Authorized(ctx context.Context, userID string, t domain.SampleType) (bool, error) {
	perms, err := r.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.Allows(t), nil
}
