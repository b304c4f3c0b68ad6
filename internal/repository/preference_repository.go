package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrPreferenceStoreUnavailable is returned by repositories whose backing
// connection was never configured.
var ErrPreferenceStoreUnavailable = errors.New("preference store not configured")

// PreferenceRepository persists string-valued view preferences under a
// scope (one per board user or session).
type PreferenceRepository interface {
	// Get returns the stored value and whether one was found.
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
	Ping(ctx context.Context) error
}

type memoryPreferenceRepository struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryPreferenceRepository returns a process-local repository.
func NewMemoryPreferenceRepository() PreferenceRepository {
	return &memoryPreferenceRepository{values: make(map[string]map[string]string)}
}

func (r *memoryPreferenceRepository) Get(_ context.Context, scope, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[scope][key]
	return value, ok, nil
}

func (r *memoryPreferenceRepository) Set(_ context.Context, scope, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values[scope] == nil {
		r.values[scope] = make(map[string]string)
	}
	r.values[scope][key] = value
	return nil
}

func (r *memoryPreferenceRepository) Ping(context.Context) error {
	return nil
}
