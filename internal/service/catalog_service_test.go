package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

type cacheStub struct {
	store   map[string]*models.BrandKeywords
	deleted []string
	sets    int
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: make(map[string]*models.BrandKeywords)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.BrandKeywords) = *cached
	return nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	kw := value.(*models.BrandKeywords)
	copy := *kw
	c.store[key] = &copy
	return nil
}

func (c *cacheStub) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

func newCatalogServiceMock(t *testing.T, cache keywordCache) (*CatalogService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	svc := NewCatalogService(repository.NewCatalogRepository(sqlx.NewDb(db, "sqlmock")), cache, time.Minute, nil, nil)
	return svc, mock, func() { db.Close() }
}

func expectBrandTree(mock sqlmock.Sqlmock) {
	expectBrand(mock, "CHANEL", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.id, m.brand_id, m.collection, m.model_name")).
		WithArgs("CHANEL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "collection", "model_name"}).
			AddRow(int64(4), int64(1), "Classic Flap", "Medium").
			AddRow(int64(5), int64(1), "Classic Flap", "Small"))
	expectSizes(mock, 4, "7", "8")
	expectMaterials(mock, 4, "Caviar")
	expectSizes(mock, 5, "6")
	expectMaterials(mock, 5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM brand_colors")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("Black"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT hardware FROM brand_hardwares")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"hardware"}).AddRow("Gold"))
}

func TestBrandKeywordsAggregatesTree(t *testing.T) {
	svc, mock, cleanup := newCatalogServiceMock(t, nil)
	defer cleanup()

	expectBrandTree(mock)

	keywords, err := svc.BrandKeywords(context.Background(), "CHANEL")
	require.NoError(t, err)
	require.Equal(t, "CHANEL", keywords.Brand)
	require.Len(t, keywords.Collections["Classic Flap"], 2)
	require.Equal(t, []string{"7", "8"}, keywords.Collections["Classic Flap"][0].Sizes)
	require.Equal(t, []string{"Black"}, keywords.Colors)
	require.Equal(t, []string{"Gold"}, keywords.Hardwares)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandKeywordsUsesCache(t *testing.T) {
	cache := newCacheStub()
	svc, mock, cleanup := newCatalogServiceMock(t, cache)
	defer cleanup()

	expectBrandTree(mock)

	first, err := svc.BrandKeywords(context.Background(), "CHANEL")
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// Second call is served from cache; no further queries expected.
	second, err := svc.BrandKeywords(context.Background(), "chanel")
	require.NoError(t, err)
	require.Equal(t, first.Brand, second.Brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandKeywordsUnknownBrand(t *testing.T) {
	svc, mock, cleanup := newCatalogServiceMock(t, nil)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM brands")).
		WithArgs("NOBRAND").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := svc.BrandKeywords(context.Background(), "NOBRAND")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateBrandDropsCacheKey(t *testing.T) {
	cache := newCacheStub()
	svc, _, cleanup := newCatalogServiceMock(t, cache)
	defer cleanup()

	svc.InvalidateBrand(context.Background(), "Chanel")
	require.Equal(t, []string{"keywords:brand:CHANEL"}, cache.deleted)
}
