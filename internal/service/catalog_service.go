package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

type keywordCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogService serves the read side of the catalog: brand lists and the
// aggregated keyword trees that drive the dropdown cascades. Brand trees are
// expensive to assemble, so they are cached per brand with a short TTL and
// invalidated on every mutation.
type CatalogService struct {
	catalog  *repository.CatalogRepository
	cache    keywordCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCatalogService constructs the service. A nil cache disables caching.
func NewCatalogService(catalog *repository.CatalogRepository, cache keywordCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{catalog: catalog, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Brands returns all brand names.
func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	names, err := s.catalog.ListBrandNames(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return names, nil
}

// BrandKeywords assembles the full keyword tree for one brand: collections
// with their models, each model's sizes and materials, plus brand-level colors
// and hardwares.
func (s *CatalogService) BrandKeywords(ctx context.Context, brandName string) (*models.BrandKeywords, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand is required")
	}

	key := brandCacheKey(brandName)
	if s.cache != nil {
		var cached models.BrandKeywords
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		s.metrics.RecordCacheLookup(false)
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("brand keyword cache read failed", zap.String("brand", brandName), zap.Error(err))
		}
	}

	result, err := s.buildBrandKeywords(ctx, brandName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("brand keyword cache write failed", zap.String("brand", brandName), zap.Error(err))
		}
	}
	return result, nil
}

func (s *CatalogService) buildBrandKeywords(ctx context.Context, brandName string) (*models.BrandKeywords, error) {
	brand, err := s.catalog.FindBrand(ctx, brandName)
	if err != nil {
		return nil, storeErr(err)
	}
	if brand == nil {
		return nil, appErrors.ErrNotFound
	}

	brandModels, err := s.catalog.ListModelsForBrand(ctx, brand.Name)
	if err != nil {
		return nil, storeErr(err)
	}

	collections := make(map[string][]models.ModelKeywords, len(brandModels))
	for _, model := range brandModels {
		sizes, err := s.catalog.ListSizes(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		materials, err := s.catalog.ListMaterials(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		collections[model.Collection] = append(collections[model.Collection], models.ModelKeywords{
			ID:        model.ID,
			ModelName: model.ModelName,
			Sizes:     sizes,
			Materials: materials,
		})
	}

	colors, err := s.catalog.ListBrandColors(ctx, brand.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	hardwares, err := s.catalog.ListBrandHardwares(ctx, brand.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	return &models.BrandKeywords{
		Brand:       brand.Name,
		Collections: collections,
		Colors:      colors,
		Hardwares:   hardwares,
	}, nil
}

// ModelsForBrand returns the models under a brand.
func (s *CatalogService) ModelsForBrand(ctx context.Context, brandName string) ([]models.Model, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand is required")
	}
	result, err := s.catalog.ListModelsForBrand(ctx, brandName)
	if err != nil {
		return nil, storeErr(err)
	}
	return result, nil
}

// SizesForModel returns the size values attached to a model.
func (s *CatalogService) SizesForModel(ctx context.Context, modelID int64) ([]string, error) {
	sizes, err := s.catalog.ListSizes(ctx, modelID)
	if err != nil {
		return nil, storeErr(err)
	}
	return sizes, nil
}

// MaterialsForModel returns the material values attached to a model.
func (s *CatalogService) MaterialsForModel(ctx context.Context, modelID int64) ([]string, error) {
	materials, err := s.catalog.ListMaterials(ctx, modelID)
	if err != nil {
		return nil, storeErr(err)
	}
	return materials, nil
}

// InvalidateBrand drops the cached keyword tree for a brand. Called after any
// catalog mutation touching the brand; failures are logged, never fatal.
func (s *CatalogService) InvalidateBrand(ctx context.Context, brand string) {
	if s.cache == nil || brand == "" {
		return
	}
	if err := s.cache.Delete(ctx, brandCacheKey(brand)); err != nil {
		s.logger.Warn("brand keyword cache invalidation failed", zap.String("brand", brand), zap.Error(err))
	}
}

func brandCacheKey(brand string) string {
	return "keywords:brand:" + strings.ToUpper(strings.TrimSpace(brand))
}
