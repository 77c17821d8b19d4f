package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vodnet/internal/core/domain"
)

type MemoryHistoryRepository struct {
	entries map[string]*domain.WatchEntry
	mu      sync.RWMutex
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		entries: make(map[string]*domain.WatchEntry),
	}
}

// Upsert replaces the entry keyed by (user, title, episode), matching the
// backend's conflict target.
func (r *MemoryHistoryRepository) Upsert(ctx context.Context, entry *domain.WatchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s/%s/%s", entry.UserID, entry.TitleID, entry.EpisodeID)
	r.entries[key] = entry
	return nil
}

func (r *MemoryHistoryRepository) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.WatchEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.WatchEntry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastWatchedAt.After(result[j].LastWatchedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
