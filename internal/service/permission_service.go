package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
)

// PermissionService manages which sample types a user shared.
type PermissionService interface {
	Get(ctx context.Context, userID string) (domain.HealthPermissions, error)
	Update(ctx context.Context, userID string, grant, revoke []domain.SampleType) (domain.HealthPermissions, error)
}

type permissionService struct {
	permRepo repository.PermissionRepository
}

// NewPermissionService creates a new instance of permissionService.
func NewPermissionService(permRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permRepo: permRepo}
}

func (s *permissionService) Get(ctx context.Context, userID string) (domain.HealthPermissions, error) {
	return s.permRepo.Get(ctx, userID)
}

// Update applies grants first, then revokes.
func (s *permissionService) Update(ctx context.Context, userID string, grant, revoke []domain.SampleType) (domain.HealthPermissions, error) {
	for _, t := range append(append([]domain.SampleType{}, grant...), revoke...) {
		if !t.Valid() {
			return domain.HealthPermissions{}, fmt.Errorf("%w: unknown sample type %q", ErrValidationFailed, t)
		}
	}

	perms, err := s.permRepo.Get(ctx, userID)
	if err != nil {
		return domain.HealthPermissions{}, err
	}

	set := make(map[domain.SampleType]bool)
	for _, t := range perms.Granted {
		set[t] = true
	}
	for _, t := range grant {
		set[t] = true
	}
	for _, t := range revoke {
		delete(set, t)
	}

	perms.UserID = userID
	perms.Granted = make([]domain.SampleType, 0, len(set))
	for t := range set {
		perms.Granted = append(perms.Granted, t)
	}
	sort.Slice(perms.Granted, func(i, j int) bool { return perms.Granted[i] < perms.Granted[j] })
	perms.UpdatedAt = time.Now().UTC()

	if err := s.permRepo.Save(ctx, perms); err != nil {
		return domain.HealthPermissions{}, err
	}
	return perms, nil
}
