package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vodnet/internal/core/domain"
)

type MemoryScheduleRepository struct {
	entries []*domain.ScheduleEntry
	mu      sync.RWMutex
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{}
}

func (r *MemoryScheduleRepository) AddEntry(entry *domain.ScheduleEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *MemoryScheduleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.ScheduleEntry
	for _, entry := range r.entries {
		if entry.StartTime.Before(to) && entry.EndTime.After(from) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}
