package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository/document"
	"alcyxob/climb-tracker/internal/repository/memory"
)

func TestPermissionService_Update(t *testing.T) {
	repo := document.NewPermissionRepository(memory.NewDocumentStore())
	svc := NewPermissionService(repo)
	ctx := context.Background()

	perms, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, perms.Granted)

	perms, err = svc.Update(ctx, "u1", []domain.SampleType{domain.SampleWorkout, domain.SampleHeartRate, domain.SampleHRV}, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.SampleType{domain.SampleHeartRate, domain.SampleHRV, domain.SampleWorkout}, perms.Granted)

	perms, err = svc.Update(ctx, "u1", nil, []domain.SampleType{domain.SampleHRV})
	require.NoError(t, err)
	assert.Equal(t, []domain.SampleType{domain.SampleHeartRate, domain.SampleWorkout}, perms.Granted)

	ok, err := repo.Authorized(ctx, "u1", domain.SampleHRV)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Authorized(ctx, "u1", domain.SampleWorkout)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissionService_RejectsUnknownType(t *testing.T) {
	svc := NewPermissionService(document.NewPermissionRepository(memory.NewDocumentStore()))

	_, err := svc.Update(context.Background(), "u1", []domain.SampleType{"steps"}, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}
