package document

import (
	"context"

	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/repository"
)

type bestTimeRepository struct {
	store repository.DocumentStore
}

func NewBestTimeRepository(store repository.DocumentStore) repository.BestTimeRepository {
	return &bestTimeRepository{store: store}
}

func (r *bestTimeRepository) Get(ctx context.Context, userID string) (*domain.BestTimeRecord, error) {
	doc, err := r.store.Get(ctx, repository.CollectionBestTimes, userID)
	if err != nil {
		return nil, err
	}
	var rec domain.BestTimeRecord
	if err := decode(doc, &rec); err != nil {
		return nil, err
	}
	if rec.UserID == "" {
		rec.UserID = doc.ID
	}
	return &rec, nil
}

// SaveBestTime merges the record into the user's document.
func (r *bestTimeRepository) SaveBestTime(ctx context.Context, rec domain.BestTimeRecord) error {
	if rec.UserID == "" {
		return repository.ErrInvalidDocument
	}
	fields, err := encode(rec)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, repository.CollectionBestTimes, rec.UserID, fields, true)
}

// List skips documents that cannot be decoded.
func (r *bestTimeRepository) List(ctx context.Context) ([]domain.BestTimeRecord, error) {
	docs, err := r.store.List(ctx, repository.CollectionBestTimes)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BestTimeRecord, 0, len(docs))
	for _, doc := range docs {
		var rec domain.BestTimeRecord
		if err := decode(doc, &rec); err != nil {
			log.WithError(err).WithField("id", doc.ID).Warn("skipping best time document")
			continue
		}
		if rec.UserID == "" {
			rec.UserID = doc.ID
		}
		out = append(out, rec)
	}
	return out, nil
}
