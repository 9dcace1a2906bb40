package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCatalogCache struct {
	mu          sync.Mutex
	sections    []model.CatalogSection
	gets        int
	sets        int
	invalidates int
	readErr     error
}

func (c *fakeCatalogCache) GetCatalog(ctx context.Context) ([]model.CatalogSection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.sections == nil {
		return nil, redis_repo.ErrCacheMiss
	}
	return c.sections, nil
}

func (c *fakeCatalogCache) SetCatalog(ctx context.Context, sections []model.CatalogSection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.sections = sections
	return nil
}

func (c *fakeCatalogCache) InvalidateCatalog(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	c.sections = nil
	return nil
}

func TestListProductsCacheAside(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddCategory("Vazia")
	p := env.addProduct(t, "Cerveja", "2.50", 10)
	cache := &fakeCatalogCache{}
	svc := NewCatalogService(env.store, cache, metrics.New(prometheus.NewRegistry()), nil)
	ctx := context.Background()

	sections, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "Bebidas", sections[0].Category.Name)
	require.Equal(t, p.ProductID, sections[0].Products[0].ProductID)
	require.Equal(t, 1, cache.sets)

	// 第二次直接命中快取, 資料庫的變動看不到
	env.addProduct(t, "Vinho", "4.00", 5)
	sections, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, sections[0].Products, 1)
	require.Equal(t, 1, cache.sets)

	svc.Invalidate(ctx)
	sections, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, sections[0].Products, 2)
	require.Equal(t, 2, cache.sets)
}

func TestListProductsCacheErrorFallsBack(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "Cerveja", "2.50", 10)
	cache := &fakeCatalogCache{readErr: errors.New("connection refused")}
	svc := NewCatalogService(env.store, cache, nil, nil)

	sections, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
}

func TestListProductsEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.store, nil, nil, nil)

	_, err := svc.ListProducts(context.Background())
	require.ErrorIs(t, err, ErrCatalogEmpty)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// 第一個請求已取消, 查詢仍完成並回填快取
func TestListProductsLoadIgnoresCallerCancel(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "Cerveja", "2.50", 5)
	cache := &fakeCatalogCache{}
	svc := NewCatalogService(env.store, cache, nil, nil)

	held := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- env.store.ExecTx(context.Background(), func(q repository.Querier) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	type result struct {
		sections []model.CatalogSection
		err      error
	}
	done := make(chan result, 1)
	go func() {
		sections, err := svc.ListProducts(ctx)
		done <- result{sections, err}
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, <-txDone)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Len(t, r.sections, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("catalog load did not finish")
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	require.Equal(t, 1, cache.sets)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	cache := &fakeCatalogCache{}
	svc := NewCatalogService(env.store, cache, nil, nil)
	ctx := context.Background()
	in := CreateProductInput{
		Name:         " Sumo de Laranja ",
		Description:  "natural",
		Price:        decimal.RequireFromString("3.456"),
		Stock:        12,
		CategoryName: "Bebidas",
	}

	_, err := svc.CreateProduct(ctx, constants.RoleUser, in)
	require.ErrorIs(t, err, ErrUnauthorized)

	product, err := svc.CreateProduct(ctx, constants.RoleAdmin, in)
	require.NoError(t, err)
	require.Equal(t, "Sumo de Laranja", product.Name)
	require.True(t, product.Price.Equal(decimal.RequireFromString("3.46")))
	require.Equal(t, 1, cache.invalidates)

	stored, err := env.store.GetProductByName(ctx, "Sumo de Laranja")
	require.NoError(t, err)
	require.Equal(t, 12, stored.Stock)

	_, err = svc.CreateProduct(ctx, constants.RoleAdmin, in)
	require.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.store, nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateProductInput
		want error
	}{
		{"empty name", CreateProductInput{Name: "  ", CategoryName: "Bebidas"}, ErrInvalidProduct},
		{"negative price", CreateProductInput{Name: "x", Price: decimal.NewFromInt(-1), CategoryName: "Bebidas"}, ErrInvalidProduct},
		{"negative stock", CreateProductInput{Name: "x", Stock: -1, CategoryName: "Bebidas"}, ErrInvalidProduct},
		{"unknown category", CreateProductInput{Name: "x", CategoryName: "Comida"}, ErrCategoryNotExist},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, constants.RoleAdmin, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
