// Package memory holds in-process implementations of the repository
// interfaces, used by the "memory" database driver and in tests.
package memory

import (
	"context"
	"sync"

	"alcyxob/climb-tracker/internal/repository"
)

type collection struct {
	order []string
	docs  map[string]map[string]interface{}
}

// DocumentStore keeps documents in memory. List returns documents in the
// order they were first written.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]*collection)}
}

func (s *DocumentStore) Get(ctx context.Context, coll, id string) (repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return repository.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return repository.Document{}, repository.ErrNotFound
	}
	fields, ok := c.docs[id]
	if !ok {
		return repository.Document{}, repository.ErrNotFound
	}
	return repository.Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *DocumentStore) Set(ctx context.Context, coll, id string, fields map[string]interface{}, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return repository.ErrInvalidDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		c = &collection{docs: make(map[string]map[string]interface{})}
		s.collections[coll] = c
	}
	existing, ok := c.docs[id]
	if !ok {
		c.order = append(c.order, id)
	}
	if !ok || !merge {
		c.docs[id] = copyFields(fields)
		return nil
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *DocumentStore) List(ctx context.Context, coll string) ([]repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return []repository.Document{}, nil
	}
	out := make([]repository.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, repository.Document{ID: id, Fields: copyFields(c.docs[id])})
	}
	return out, nil
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
