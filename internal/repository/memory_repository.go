// internal/repository/memory_repository.go
package repository

import (
	"context"
	"sync"

	"device-configurator/internal/model"
)

// memorySnapshotRepository keeps snapshots for the lifetime of the process.
// It is used when no database is configured.
type memorySnapshotRepository struct {
	mutex     sync.RWMutex
	snapshots []*model.ConfigSnapshot
	capacity  int
}

// NewMemorySnapshotRepository creates an in-process snapshot store holding
// at most capacity entries.
func NewMemorySnapshotRepository(capacity int) SnapshotRepository {
	if capacity <= 0 {
		capacity = DefaultSnapshotLimit
	}
	return &memorySnapshotRepository{capacity: capacity}
}

func (r *memorySnapshotRepository) Save(_ context.Context, snapshot *model.ConfigSnapshot) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.snapshots = append(r.snapshots, snapshot)
	if len(r.snapshots) > r.capacity {
		r.snapshots = r.snapshots[len(r.snapshots)-r.capacity:]
	}
	return nil
}

func (r *memorySnapshotRepository) List(_ context.Context, filter *SnapshotFilter) ([]*model.ConfigSnapshot, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if filter == nil {
		filter = &SnapshotFilter{}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}

	out := []*model.ConfigSnapshot{}
	for i := len(r.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		s := r.snapshots[i]
		if filter.Product != "" && s.Product != filter.Product {
			continue
		}
		if filter.Model != "" && s.Model != filter.Model {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
