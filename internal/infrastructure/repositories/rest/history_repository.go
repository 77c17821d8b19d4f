package rest

import (
	"context"
	"net/url"
	"strconv"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/provider"
)

type RestHistoryRepository struct {
	client *provider.Client
}

func NewRestHistoryRepository(client *provider.Client) ports.HistoryRepository {
	return &RestHistoryRepository{client: client}
}

func (r *RestHistoryRepository) Upsert(ctx context.Context, entry *domain.WatchEntry) error {
	return r.client.Upsert(ctx, "watch_history", entry, "user_id,movie_id,episode_id")
}

func (r *RestHistoryRepository) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.WatchEntry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+string(userID))
	q.Set("order", "last_watched_at.desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var entries []*domain.WatchEntry
	if err := r.client.Select(ctx, "watch_history", q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
