package redis_repo

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testRedisAddr     = "localhost:6379"
	testRedisPassword = ""
)

type CatalogCacheTestSuite struct {
	suite.Suite
	client *redis.Client
	cache  *CatalogCache
}

func (suite *CatalogCacheTestSuite) SetupSuite() {
	client, err := NewRedisClient(context.Background(), testRedisAddr, testRedisPassword, 1) // 用測試DB
	if err != nil {
		suite.T().Skipf("redis not available: %v", err)
	}
	suite.client = client
}

func (suite *CatalogCacheTestSuite) SetupTest() {
	suite.client.FlushDB(context.Background())
	suite.cache = NewCatalogCache(suite.client, time.Minute)
}

func (suite *CatalogCacheTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.client.Close()
	}
}

func TestCatalogCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogCacheTestSuite))
}

func (suite *CatalogCacheTestSuite) TestMissSetGetInvalidate() {
	ctx := context.Background()

	_, err := suite.cache.GetCatalog(ctx)
	require.ErrorIs(suite.T(), err, ErrCacheMiss)

	sections := []model.CatalogSection{{
		Category: model.Category{CategoryID: 1, Name: "Bebidas"},
		Products: []model.Product{{ProductID: 1, Name: "Cerveja", Price: decimal.RequireFromString("2.50"), Stock: 3, CategoryID: 1}},
	}}
	require.NoError(suite.T(), suite.cache.SetCatalog(ctx, sections))

	got, err := suite.cache.GetCatalog(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), got, 1)
	require.Equal(suite.T(), "Cerveja", got[0].Products[0].Name)
	require.True(suite.T(), got[0].Products[0].Price.Equal(decimal.RequireFromString("2.50")))

	ttl := suite.client.TTL(ctx, catalogKey).Val()
	require.Greater(suite.T(), ttl, time.Duration(0))

	require.NoError(suite.T(), suite.cache.InvalidateCatalog(ctx))
	_, err = suite.cache.GetCatalog(ctx)
	require.ErrorIs(suite.T(), err, ErrCacheMiss)
}

func (suite *CatalogCacheTestSuite) TestCorruptedValueIsMiss() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.client.Set(ctx, catalogKey, "not-json", time.Minute).Err())

	_, err := suite.cache.GetCatalog(ctx)
	require.ErrorIs(suite.T(), err, ErrCacheMiss)
	require.Zero(suite.T(), suite.client.Exists(ctx, catalogKey).Val())
}
