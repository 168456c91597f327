package repository

import (
	"context"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/healthstore"
)

// Error constants for the repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrInvalidDocument = RepositoryError("invalid document")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Collections used in the document store.
const (
	CollectionBestTimes      = "best_times"
	CollectionMonthlyMinutes = "monthly_minutes"
	CollectionPermissions    = "health_permissions"
)

// Document is one record of a collection in the key-value document store.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// DocumentStore is the external key-value document store.
// Set with merge updates only the given fields; without merge it replaces
// the whole document. Both create the document when it is missing.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error
	List(ctx context.Context, collection string) ([]Document, error)
}

// SampleRepository stores raw health samples and serves time-range queries.
type SampleRepository interface {
	healthstore.SampleSource
	InsertMany(ctx context.Context, samples []domain.Sample) (int, error)
}

// BestTimeRepository persists hang-timer records keyed by user.
type BestTimeRepository interface {
	Get(ctx context.Context, userID string) (*domain.BestTimeRecord, error)
	SaveBestTime(ctx context.Context, rec domain.BestTimeRecord) error
	List(ctx context.Context) ([]domain.BestTimeRecord, error)
}

// MonthlyMinutesRepository persists the current month's climbing minutes per user.
type MonthlyMinutesRepository interface {
	Save(ctx context.Context, rec domain.MonthlyMinutes) error
	List(ctx context.Context) ([]domain.MonthlyMinutes, error)
}

// PermissionRepository persists health-data consent.
type PermissionRepository interface {
	healthstore.PermissionChecker
	Get(ctx context.Context, userID string) (domain.HealthPermissions, error)
	Save(ctx context.Context, perms domain.HealthPermissions) error
}
