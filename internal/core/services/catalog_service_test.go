package services

import (
	"context"
	"errors"
	"testing"

	"vodnet/internal/core/domain"
	"vodnet/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	titles      []*domain.Title
	collections []*domain.Collection
	categories  []*domain.Category
	err         error
}

func (f *fakeCatalogRepo) ListTitles(ctx context.Context, query ports.CatalogQuery) ([]*domain.Title, error) {
	return f.titles, f.err
}

func (f *fakeCatalogRepo) ListFeatured(ctx context.Context) ([]*domain.Title, error) {
	return f.titles, f.err
}

func (f *fakeCatalogRepo) ListTrending(ctx context.Context) ([]*domain.Title, error) {
	return f.titles, f.err
}

func (f *fakeCatalogRepo) GetTitle(ctx context.Context, id domain.TitleID) (*domain.Title, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.titles {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrTitleNotFound
}

func (f *fakeCatalogRepo) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalogRepo) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	return f.collections, f.err
}

func TestCatalogService_BrowseHidesDrafts(t *testing.T) {
	repo := &fakeCatalogRepo{titles: []*domain.Title{
		{ID: "t1", Status: domain.StatusPublished},
		{ID: "t2", Status: domain.StatusDraft},
		{ID: "t3", Status: domain.StatusPublished},
	}}

	s := NewCatalogService(repo)
	titles, err := s.Browse(context.Background(), ports.CatalogQuery{})
	require.NoError(t, err)

	require.Len(t, titles, 2)
	assert.Equal(t, domain.TitleID("t1"), titles[0].ID)
	assert.Equal(t, domain.TitleID("t3"), titles[1].ID)
}

func TestCatalogService_GetTitleDraftIsNotFound(t *testing.T) {
	repo := &fakeCatalogRepo{titles: []*domain.Title{
		{ID: "t1", Status: domain.StatusDraft},
	}}

	s := NewCatalogService(repo)
	_, err := s.GetTitle(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)
}

func TestCatalogService_GetTitleUnknown(t *testing.T) {
	s := NewCatalogService(&fakeCatalogRepo{})
	_, err := s.GetTitle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)
}

func TestCatalogService_CollectionsHideInactive(t *testing.T) {
	repo := &fakeCatalogRepo{collections: []*domain.Collection{
		{ID: "c1", Active: true},
		{ID: "c2", Active: false},
	}}

	s := NewCatalogService(repo)
	collections, err := s.Collections(context.Background())
	require.NoError(t, err)

	require.Len(t, collections, 1)
	assert.Equal(t, "c1", collections[0].ID)
}

func TestCatalogService_RepositoryErrorPropagates(t *testing.T) {
	repo := &fakeCatalogRepo{err: errors.New("backend unavailable")}

	s := NewCatalogService(repo)
	_, err := s.Browse(context.Background(), ports.CatalogQuery{})
	assert.Error(t, err)
}
