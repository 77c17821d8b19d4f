package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
)

// MemoryCatalogRepository keeps the catalog in process memory. It starts
// empty; tests and offline mode seed it through AddTitle and friends.
type MemoryCatalogRepository struct {
	titles      map[domain.TitleID]*domain.Title
	categories  map[string]*domain.Category
	collections map[string]*domain.Collection
	mu          sync.RWMutex
}

func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		titles:      make(map[domain.TitleID]*domain.Title),
		categories:  make(map[string]*domain.Category),
		collections: make(map[string]*domain.Collection),
	}
}

func (r *MemoryCatalogRepository) AddTitle(title *domain.Title) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles[title.ID] = title
}

func (r *MemoryCatalogRepository) AddCategory(category *domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = category
}

func (r *MemoryCatalogRepository) AddCollection(collection *domain.Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection.ID] = collection
}

func (r *MemoryCatalogRepository) ListTitles(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Title
	for _, title := range r.titles {
		if query.Type != "" && title.Type != query.Type {
			continue
		}
		if query.Search != "" && !strings.Contains(strings.ToLower(title.Name), strings.ToLower(query.Search)) {
			continue
		}
		if query.CategorySlug != "" && !hasCategory(title, query.CategorySlug) {
			continue
		}
		result = append(result, title)
	}

	sortByCreatedAtDesc(result)
	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result, nil
}

func (r *MemoryCatalogRepository) ListFeatured(ctx context.Context) ([]*domain.Title, error) {
	return r.listWhere(func(t *domain.Title) bool { return t.Featured })
}

func (r *MemoryCatalogRepository) ListTrending(ctx context.Context) ([]*domain.Title, error) {
	return r.listWhere(func(t *domain.Title) bool { return t.Trending })
}

func (r *MemoryCatalogRepository) listWhere(keep func(*domain.Title) bool) ([]*domain.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Title
	for _, title := range r.titles {
		if keep(title) {
			result = append(result, title)
		}
	}
	sortByCreatedAtDesc(result)
	return result, nil
}

func (r *MemoryCatalogRepository) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	title, exists := r.titles[id]
	if !exists {
		return nil, domain.ErrTitleNotFound
	}
	return title, nil
}

func (r *MemoryCatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *MemoryCatalogRepository) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Collection, 0, len(r.collections))
	for _, collection := range r.collections {
		result = append(result, collection)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayOrder < result[j].DisplayOrder })
	return result, nil
}

func hasCategory(title *domain.Title, slug string) bool {
	for _, category := range title.Categories {
		if category.Slug == slug {
			return true
		}
	}
	return false
}

func sortByCreatedAtDesc(titles []*domain.Title) {
	sort.Slice(titles, func(i, j int) bool {
		return titles[i].CreatedAt.After(titles[j].CreatedAt)
	})
}
