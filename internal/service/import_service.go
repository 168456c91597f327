package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/fitimport"
	"alcyxob/climb-tracker/internal/storage"
)

const fitContentType = "application/vnd.ant.fit"

type UploadTicket struct {
	ObjectKey   string    `json:"objectKey"`
	UploadURL   string    `json:"uploadUrl"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ImportResult struct {
	WorkoutID        string              `json:"workoutId"`
	ActivityKind     domain.ActivityKind `json:"activityKind"`
	StartTime        time.Time           `json:"startTime"`
	DurationSeconds  float64             `json:"durationSeconds"`
	HeartRateSamples int                 `json:"heartRateSamples"`
}

// ImportService handles FIT uploads: a presigned URL first, then a confirm
// call that decodes the uploaded object into samples.
type ImportService interface {
	CreateUploadURL(ctx context.Context, userID string) (*UploadTicket, error)
	ConfirmImport(ctx context.Context, userID, objectKey string) (*ImportResult, error)
	// UploadObject stores an upload sent through the API. Only backends
	// implementing storage.ObjectWriter accept it.
	UploadObject(ctx context.Context, userID, objectKey string, data []byte) error
}

type importService struct {
	files     storage.FileStorage
	ingest    IngestService
	converter *fitimport.Converter
	expiry    time.Duration
	now       func() time.Time
}

// NewImportService creates a new instance of importService.
func NewImportService(files storage.FileStorage, ingest IngestService, expiry time.Duration) ImportService {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &importService{
		files:     files,
		ingest:    ingest,
		converter: fitimport.NewConverter(),
		expiry:    expiry,
		now:       time.Now,
	}
}

func importPrefix(userID string) string {
	return "imports/" + userID + "/"
}

func ownsImportKey(userID, objectKey string) bool {
	return userID != "" && strings.HasPrefix(objectKey, importPrefix(userID)) &&
		strings.HasSuffix(objectKey, ".fit") && !strings.Contains(objectKey, "..")
}

func (s *importService) CreateUploadURL(ctx context.Context, userID string) (*UploadTicket, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidationFailed)
	}
	key := importPrefix(userID) + uuid.NewString() + ".fit"
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, fitContentType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadTicket{
		ObjectKey:   key,
		UploadURL:   url,
		ContentType: fitContentType,
		ExpiresAt:   s.now().Add(s.expiry).UTC(),
	}, nil
}

func (s *importService) ConfirmImport(ctx context.Context, userID, objectKey string) (*ImportResult, error) {
	if !ownsImportKey(userID, objectKey) {
		return nil, ErrImportAccessDenied
	}

	data, err := s.files.GetObject(ctx, objectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch import: %w", err)
	}

	activity, err := fitimport.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	samples, err := s.converter.Convert(userID, activity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	if _, err := s.ingest.Ingest(ctx, userID, samples); err != nil {
		return nil, err
	}

	if err := s.files.DeleteObject(ctx, objectKey); err != nil {
		log.WithField("key", objectKey).WithError(err).Warn("failed to delete imported object")
	}

	workout := samples[0]
	return &ImportResult{
		WorkoutID:        workout.ID,
		ActivityKind:     workout.ActivityKind,
		StartTime:        workout.Start,
		DurationSeconds:  workout.DurationSeconds,
		HeartRateSamples: len(samples) - 1,
	}, nil
}

func (s *importService) UploadObject(ctx context.Context, userID, objectKey string, data []byte) error {
	writer, ok := s.files.(storage.ObjectWriter)
	if !ok {
		return ErrDirectUploadUnsupported
	}
	if !ownsImportKey(userID, objectKey) {
		return ErrImportAccessDenied
	}
	if err := writer.PutObject(ctx, objectKey, data); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	log.WithFields(log.Fields{"key": objectKey, "bytes": len(data)}).Debug("stored direct upload")
	return nil
}
