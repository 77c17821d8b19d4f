package services

import (
	"context"
	"strings"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"
)

type catalogService struct {
	repo ports.CatalogRepository
}

// NewCatalogService returns the read-side catalog service. All data comes from
// the backend's data API; this layer only enforces visibility rules.
func NewCatalogService(repo ports.CatalogRepository) ports.CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) Browse(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	query.Search = strings.TrimSpace(query.Search)
	titles, err := s.repo.ListTitles(ctx, query)
	if err != nil {
		return nil, err
	}
	return publishedOnly(titles), nil
}

func (s *catalogService) Featured(ctx context.Context) ([]*domain.Title, error) {
	titles, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	return publishedOnly(titles), nil
}

func (s *catalogService) Trending(ctx context.Context) ([]*domain.Title, error) {
	titles, err := s.repo.ListTrending(ctx)
	if err != nil {
		return nil, err
	}
	return publishedOnly(titles), nil
}

func (s *catalogService) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	title, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	// Drafts are invisible outside admin tooling, which lives elsewhere.
	if !title.Published() {
		return nil, domain.ErrTitleNotFound
	}
	return title, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *catalogService) Collections(ctx context.Context) ([]*domain.Collection, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.Collection, 0, len(collections))
	for _, c := range collections {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func publishedOnly(titles []*domain.Title) []*domain.Title {
	visible := make([]*domain.Title, 0, len(titles))
	for _, t := range titles {
		if t.Published() {
			visible = append(visible, t)
		}
	}
	return visible
}
