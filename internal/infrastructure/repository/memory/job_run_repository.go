package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/live-tracker/internal/domain/jobscheduler"
)

const defaultJobRunCapacity = 50

// JobRunRepository keeps the most recent refresh runs. Older runs are evicted first.
type JobRunRepository struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]jobscheduler.RunEvent
	orders   []string
}

func NewJobRunRepository(capacity int) *JobRunRepository {
	if capacity < 1 {
		capacity = defaultJobRunCapacity
	}
	return &JobRunRepository{
		capacity: capacity,
		items:    make(map[string]jobscheduler.RunEvent, capacity),
		orders:   make([]string, 0, capacity),
	}
}

func (r *JobRunRepository) UpsertEvent(_ context.Context, event jobscheduler.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.Leagues = append([]string(nil), event.Leagues...)
	if _, ok := r.items[event.RunID]; ok {
		r.items[event.RunID] = event
		return nil
	}

	if len(r.orders) >= r.capacity {
		oldest := r.orders[0]
		r.orders = r.orders[1:]
		delete(r.items, oldest)
	}
	r.items[event.RunID] = event
	r.orders = append(r.orders, event.RunID)

	return nil
}

func (r *JobRunRepository) ListRecent(_ context.Context, limit int) ([]jobscheduler.RunEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.orders) {
		limit = len(r.orders)
	}
	out := make([]jobscheduler.RunEvent, 0, limit)
	for i := len(r.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[r.orders[i]])
	}

	return out, nil
}
