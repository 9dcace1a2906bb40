package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type CreateProductInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	CategoryName string
}

type ICatalogService interface {
	ListProducts(ctx context.Context) ([]model.CatalogSection, error)
	CreateProduct(ctx context.Context, role constants.Role, in CreateProductInput) (*model.Product, error)
	Invalidate(ctx context.Context)
}

/*
cache aside
讀: cache => miss => db => 回填
寫: db => 刪除 cache
同一時間的 miss 由 singleflight 合併成一次查詢
*/
type CatalogService struct {
	store   repository.Store
	cache   redis_repo.ICatalogCache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewCatalogService cache 可為 nil, 直接讀資料庫
func NewCatalogService(store repository.Store, cache redis_repo.ICatalogCache, m *metrics.Metrics, logger *zerolog.Logger) *CatalogService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CatalogService{store: store, cache: cache, metrics: m, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]model.CatalogSection, error) {
	if s.cache != nil {
		sections, err := s.cache.GetCatalog(ctx)
		switch {
		case err == nil:
			s.metrics.IncCatalogCache(metrics.ResultHit)
			return sections, nil
		case errors.Is(err, redis_repo.ErrCacheMiss):
			s.metrics.IncCatalogCache(metrics.ResultMiss)
		default:
			s.metrics.IncCatalogCache(metrics.ResultError)
			s.logger.Warn().Err(err).Msg("catalog cache read failed")
		}
	}

	v, err, _ := s.group.Do("catalog", func() (any, error) {
		// 合併的查詢不跟著第一個請求取消, 等待中的請求共用結果
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultRequestTimeout)
		defer cancel()

		sections, err := s.loadCatalog(loadCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && len(sections) > 0 {
			if err := s.cache.SetCatalog(loadCtx, sections); err != nil {
				s.logger.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
		return sections, nil
	})
	if err != nil {
		return nil, apperr.Internal(err, "list products failed")
	}
	sections := v.([]model.CatalogSection)
	if len(sections) == 0 {
		return nil, ErrCatalogEmpty
	}
	return sections, nil
}

// loadCatalog 沒有商品的分類不列出
func (s *CatalogService) loadCatalog(ctx context.Context) ([]model.CatalogSection, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sections := make([]model.CatalogSection, 0, len(categories))
	for _, c := range categories {
		products, err := s.store.ListProductsByCategory(ctx, c.CategoryID)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			continue
		}
		sections = append(sections, model.CatalogSection{Category: c, Products: products})
	}
	return sections, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, role constants.Role, in CreateProductInput) (*model.Product, error) {
	if role != constants.RoleAdmin {
		return nil, ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Price.IsNegative() || in.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	var product *model.Product
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		category, err := q.GetCategoryByName(ctx, strings.TrimSpace(in.CategoryName))
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return ErrCategoryNotExist
			}
			return err
		}
		if _, err := q.GetProductByName(ctx, in.Name); err == nil {
			return ErrDuplicateProduct
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			return err
		}

		product = &model.Product{
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price.Round(2),
			Stock:       in.Stock,
			CategoryID:  category.CategoryID,
		}
		if err := q.CreateProduct(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicateProduct) {
				return ErrDuplicateProduct
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "create product failed")
	}

	s.Invalidate(context.WithoutCancel(ctx))
	return product, nil
}

func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidate failed")
	}
}
