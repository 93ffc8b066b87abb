package storage

import (
	"sync"

	"jobwatch/internal/core/domain"
)

type MemoryWatchRepository struct {
	watches map[string]domain.Watch
	mu      sync.RWMutex
}

func NewMemoryWatchRepository() *MemoryWatchRepository {
	return &MemoryWatchRepository{
		watches: make(map[string]domain.Watch),
	}
}

func (r *MemoryWatchRepository) Save(watch domain.Watch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.watches[watch.ID] = watch
	return nil
}

func (r *MemoryWatchRepository) FindByID(id string) (domain.Watch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	watch, exists := r.watches[id]
	if !exists {
		return domain.Watch{}, domain.ErrWatchNotFound
	}

	return watch, nil
}

func (r *MemoryWatchRepository) FindAll() ([]domain.Watch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	watches := make([]domain.Watch, 0, len(r.watches))
	for _, watch := range r.watches {
		watches = append(watches, watch)
	}

	return watches, nil
}

func (r *MemoryWatchRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watches[id]; !exists {
		return domain.ErrWatchNotFound
	}

	delete(r.watches, id)
	return nil
}
