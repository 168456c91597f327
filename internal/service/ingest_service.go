package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/metrics"
	"alcyxob/climb-tracker/internal/repository"
)

const (
	MaxIngestBatch = 5000
	SourceDevice   = "device"
)

// IngestService validates and stores raw samples pushed by devices.
type IngestService interface {
	Ingest(ctx context.Context, userID string, samples []domain.Sample) (int, error)
}

type ingestService struct {
	sampleRepo repository.SampleRepository
	metrics    *metrics.Manager
}

// NewIngestService creates a new instance of ingestService.
func NewIngestService(sampleRepo repository.SampleRepository, metricsManager *metrics.Manager) IngestService {
	return &ingestService{sampleRepo: sampleRepo, metrics: metricsManager}
}

// Ingest stores the batch for userID. The whole batch is rejected when any
// sample is invalid. Samples are always stored under the caller's user id.
func (s *ingestService) Ingest(ctx context.Context, userID string, samples []domain.Sample) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrValidationFailed)
	}
	if len(samples) > MaxIngestBatch {
		return 0, ErrBatchTooLarge
	}
	if len(samples) == 0 {
		return 0, nil
	}

	prepared := make([]domain.Sample, 0, len(samples))
	for i, smp := range samples {
		normalized, err := normalizeSample(userID, smp)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		prepared = append(prepared, normalized)
	}

	n, err := s.sampleRepo.InsertMany(ctx, prepared)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		bySource := make(map[string]int)
		for _, smp := range prepared {
			bySource[smp.Source]++
		}
		for source, count := range bySource {
			s.metrics.CounterSamplesIngested.WithLabelValues(source).Add(float64(count))
		}
	}
	log.WithFields(log.Fields{"user": userID, "count": n}).Debug("samples stored")
	return n, nil
}

// sampleNamespace seeds stored sample ids.
var sampleNamespace = uuid.MustParse("5b0c7f2e-3d1a-4c8e-9f6b-2a7d4e1c8b90")

// storedSampleID derives the stored id from the owner and the device id, so a
// device id can never address another user's sample. Samples without a
// device id get a random id.
func storedSampleID(userID, deviceID string) string {
	if deviceID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(sampleNamespace, []byte(userID+"/"+deviceID)).String()
}

func normalizeSample(userID string, smp domain.Sample) (domain.Sample, error) {
	if !smp.Type.Valid() {
		return smp, fmt.Errorf("%w: unknown sample type %q", ErrValidationFailed, smp.Type)
	}
	if smp.Start.IsZero() {
		return smp, fmt.Errorf("%w: start is required", ErrValidationFailed)
	}
	if smp.DurationSeconds < 0 {
		return smp, fmt.Errorf("%w: negative duration", ErrValidationFailed)
	}
	if smp.CaloriesBurned != nil && *smp.CaloriesBurned < 0 {
		return smp, fmt.Errorf("%w: negative calories", ErrValidationFailed)
	}

	smp.UserID = userID
	if smp.DeviceID == "" {
		smp.DeviceID = smp.ID
	}
	smp.ID = storedSampleID(userID, smp.DeviceID)
	if smp.Source == "" {
		smp.Source = SourceDevice
	}
	smp.Start = smp.Start.UTC()

	if smp.Type == domain.SampleWorkout {
		if smp.ActivityKind == "" {
			smp.ActivityKind = domain.ActivityOther
		}
		if smp.DurationSeconds == 0 && smp.End.After(smp.Start) {
			smp.DurationSeconds = smp.End.Sub(smp.Start).Seconds()
		}
		smp.End = domain.WorkoutFromSample(smp).End()
	}
	if smp.End.IsZero() {
		smp.End = smp.Start
	}
	smp.End = smp.End.UTC()
	if smp.End.Before(smp.Start) {
		return smp, fmt.Errorf("%w: end before start", ErrValidationFailed)
	}
	return smp, nil
}
