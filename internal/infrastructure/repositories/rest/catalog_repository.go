package rest

import (
	"context"
	"net/url"
	"strconv"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
	"vodnet/internal/infrastructure/provider"
)

// RestCatalogRepository reads the catalog tables through the provider's data
// API. Seasons, episodes and categories come back via resource embedding, so
// a title detail is a single request.
type RestCatalogRepository struct {
	client *provider.Client
}

func NewRestCatalogRepository(client *provider.Client) ports.CatalogRepository {
	return &RestCatalogRepository{client: client}
}

func (r *RestCatalogRepository) ListTitles(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	q := url.Values{}
	q.Set("select", "*,categories(*)")
	q.Set("order", "created_at.desc")

	if query.Type != "" {
		q.Set("type", "eq."+string(query.Type))
	}
	if query.Search != "" {
		q.Set("title", "ilike.*"+query.Search+"*")
	}
	if query.CategorySlug != "" {
		// Inner join so titles outside the category are not returned.
		q.Set("select", "*,categories!inner(*)")
		q.Set("categories.slug", "eq."+query.CategorySlug)
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}

	var titles []*domain.Title
	if err := r.client.Select(ctx, "movies", q, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *RestCatalogRepository) ListFeatured(ctx context.Context) ([]*domain.Title, error) {
	return r.listFlagged(ctx, "is_featured")
}

func (r *RestCatalogRepository) ListTrending(ctx context.Context) ([]*domain.Title, error) {
	return r.listFlagged(ctx, "is_trending")
}

func (r *RestCatalogRepository) listFlagged(ctx context.Context, flag string) ([]*domain.Title, error) {
	q := url.Values{}
	q.Set("select", "*,categories(*)")
	q.Set(flag, "eq.true")
	q.Set("order", "created_at.desc")

	var titles []*domain.Title
	if err := r.client.Select(ctx, "movies", q, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *RestCatalogRepository) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	q := url.Values{}
	q.Set("select", "*,categories(*),seasons(*,episodes(*))")
	q.Set("id", "eq."+string(id))

	var titles []*domain.Title
	if err := r.client.Select(ctx, "movies", q, &titles); err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, domain.ErrTitleNotFound
	}
	return titles[0], nil
}

func (r *RestCatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "name.asc")

	var categories []*domain.Category
	if err := r.client.Select(ctx, "categories", q, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *RestCatalogRepository) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	q := url.Values{}
	q.Set("select", "*,titles:movies(*)")
	q.Set("order", "display_order.asc")

	var collections []*domain.Collection
	if err := r.client.Select(ctx, "collections", q, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}
