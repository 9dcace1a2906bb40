package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// ICatalogCache 商品目錄快取
type ICatalogCache interface {
	// GetCatalog 不存在時回傳 ErrCacheMiss
	GetCatalog(ctx context.Context) ([]model.CatalogSection, error)
	SetCatalog(ctx context.Context, sections []model.CatalogSection) error
	InvalidateCatalog(ctx context.Context) error
}

/*
	整份目錄存成一個 json 字串
	key: catalog:all
	任何庫存或商品異動後直接刪除, 下次讀取再回填
*/
const catalogKey = "catalog:all"

type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) GetCatalog(ctx context.Context) ([]model.CatalogSection, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var sections []model.CatalogSection
	if err := json.Unmarshal(raw, &sections); err != nil {
		// 壞掉的資料當成沒命中, 由呼叫端回填
		c.client.Del(ctx, catalogKey)
		return nil, ErrCacheMiss
	}
	return sections, nil
}

func (c *CatalogCache) SetCatalog(ctx context.Context, sections []model.CatalogSection) error {
	raw, err := json.Marshal(sections)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, raw, c.ttl).Err()
}

func (c *CatalogCache) InvalidateCatalog(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
