package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

type IInventoryService interface {
	GetStock(ctx context.Context, productID int64) (int, error)
	Decrement(ctx context.Context, productID int64, amount int) error
	DecrementInTx(ctx context.Context, q repository.IProductRepository, product *model.Product, amount int) error
}

// InventoryService 所有扣庫存的路徑都要經過 decrementStock
type InventoryService struct {
	store repository.Store
}

func NewInventoryService(store repository.Store) *InventoryService {
	return &InventoryService{store: store}
}

func (s *InventoryService) GetStock(ctx context.Context, productID int64) (int, error) {
	stock, err := s.store.GetProductStock(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, ErrProductNotExist
		}
		return 0, apperr.Internal(err, "get stock failed")
	}
	return stock, nil
}

func (s *InventoryService) Decrement(ctx context.Context, productID int64, amount int) error {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperr.Internal(err, fmt.Sprintf("product %d missing", productID))
		}
		return apperr.Internal(err, "get product failed")
	}
	return decrementStock(ctx, s.store, product, amount)
}

// DecrementInTx 在呼叫端的 transaction 內扣庫存
func (s *InventoryService) DecrementInTx(ctx context.Context, q repository.IProductRepository, product *model.Product, amount int) error {
	return decrementStock(ctx, q, product, amount)
}

// decrementStock 庫存不足是呼叫端可處理的錯誤, 商品不存在代表資料不一致, 視為 internal
func decrementStock(ctx context.Context, q repository.IProductRepository, product *model.Product, amount int) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "amount must be positive")
	}
	_, err := q.DeductProductStock(ctx, product.ProductID, amount)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStockNotEnough):
		return insufficientStock(product.Name)
	case errors.Is(err, repository.ErrProductNotFound):
		return apperr.Internal(err, fmt.Sprintf("product %d missing", product.ProductID))
	default:
		return err
	}
}
