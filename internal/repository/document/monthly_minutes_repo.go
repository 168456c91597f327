package document

import (
	"context"

	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
)

type monthlyMinutesRepository struct {
	store repository.DocumentStore
}

func NewMonthlyMinutesRepository(store repository.DocumentStore) repository.MonthlyMinutesRepository {
	return &monthlyMinutesRepository{store: store}
}

func (r *monthlyMinutesRepository) Save(ctx context.Context, rec domain.MonthlyMinutes) error {
	if rec.UserID == "" {
		return repository.ErrInvalidDocument
	}
	fields, err := encode(rec)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, repository.CollectionMonthlyMinutes, rec.UserID, fields, true)
}

func (r *monthlyMinutesRepository) List(ctx context.Context) ([]domain.MonthlyMinutes, error) {
	docs, err := r.store.List(ctx, repository.CollectionMonthlyMinutes)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MonthlyMinutes, 0, len(docs))
	for _, doc := range docs {
		var rec domain.MonthlyMinutes
		if err := decode(doc, &rec); err != nil {
			log.WithError(err).WithField("id", doc.ID).Warn("skipping monthly minutes document")
			continue
		}
		if rec.UserID == "" {
			rec.UserID = doc.ID
		}
		out = append(out, rec)
	}
	return out, nil
}
