package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository is a Repository that keeps values in process memory.
// It backs the CLI when no database path is configured, and tests.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: map[string][]byte{}}
}

func (r *MemoryRepository) Get(_ context.Context, namespace string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[namespace]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, namespace string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[namespace] = slices.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, namespace string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, namespace)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
