package healthstore

import (
	"context"
	"sort"
	"sync"

	"alcyxob/climb-tracker/internal/domain"
)

// MemorySource is an in-process SampleSource used by the "memory" database
// driver and by tests.
type MemorySource struct {
	mu      sync.RWMutex
	samples []domain.Sample
}

func NewMemorySource(samples ...domain.Sample) *MemorySource {
	return &MemorySource{samples: append([]domain.Sample(nil), samples...)}
}

// InsertMany appends samples. A sample whose id the same user already
// stored is left untouched; ids are scoped per user.
func (m *MemorySource) InsertMany(_ context.Context, samples []domain.Sample) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(m.samples))
	for _, s := range m.samples {
		seen[sampleKey(s)] = true
	}
	for _, s := range samples {
		if s.ID != "" && seen[sampleKey(s)] {
			continue
		}
		seen[sampleKey(s)] = true
		m.samples = append(m.samples, s)
	}
	return len(samples), nil
}

func sampleKey(s domain.Sample) string {
	return s.UserID + "\x00" + s.ID
}

func (m *MemorySource) QuerySamples(ctx context.Context, q Query) ([]domain.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Sample
	for _, s := range m.samples {
		if s.UserID != q.UserID || s.Type != q.Type {
			continue
		}
		if s.Start.Before(q.Start) || !s.Start.Before(q.End) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.SortDescending {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].Start.Before(out[j].Start)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
