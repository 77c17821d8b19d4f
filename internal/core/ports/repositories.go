package ports

import (
	"context"
	"time"

	"vodnet/internal/core/domain"
)

// CatalogQuery narrows a catalog listing. Zero value means "everything
// published".
type CatalogQuery struct {
	CategorySlug string
	Type         domain.ContentType
	Search       string
	Limit        int
}

type CatalogRepository interface {
	ListTitles(ctx context.Context, query CatalogQuery) ([]*domain.Title, error)
	ListFeatured(ctx context.Context) ([]*domain.Title, error)
	ListTrending(ctx context.Context) ([]*domain.Title, error)
	// GetTitle returns a title with its seasons and episodes resolved.
	GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListCollections(ctx context.Context) ([]*domain.Collection, error)
}

type ScheduleRepository interface {
	// ListBetween returns schedule entries overlapping [from, to), ordered by
	// start time.
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleEntry, error)
}

type PlanRepository interface {
	ListActive(ctx context.Context) ([]*domain.Plan, error)
}

type HistoryRepository interface {
	// Upsert replaces the entry for (user, title, episode).
	Upsert(ctx context.Context, entry *domain.WatchEntry) error
	ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.WatchEntry, error)
}
