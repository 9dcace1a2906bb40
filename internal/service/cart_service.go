package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/shopspring/decimal"
)

type QuantityOperation string

const (
	OperationIncrease QuantityOperation = "aumentar"
	OperationDecrease QuantityOperation = "diminuir"
)

// ParseQuantityOperation 只接受 aumentar / diminuir
func ParseQuantityOperation(op string) (int, error) {
	switch QuantityOperation(op) {
	case OperationIncrease:
		return 1, nil
	case OperationDecrease:
		return -1, nil
	default:
		return 0, ErrInvalidOperation
	}
}

type CartView struct {
	Items []model.CartItem
	Total decimal.Decimal
}

type ICartService interface {
	AddItem(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	// ChangeQuantity 數量歸零時刪除該行, 回傳 nil item
	ChangeQuantity(ctx context.Context, userID, productID int64, operation string) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	GetCart(ctx context.Context, userID int64) (*CartView, error)
	Clear(ctx context.Context, userID int64, productIDs []int64) error
}

type CartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{store: store}
}

// AddItem 加入或 +1, 數量以寫入當下的值計算, 並在同一交易內重新檢查庫存
func (s *CartService) AddItem(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	var item *model.CartItem
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		product, err := getProduct(ctx, q, productID)
		if err != nil {
			return err
		}
		if product.Stock <= 0 {
			return ErrProductOutOfStock
		}

		item, err = q.IncrementCartItem(ctx, userID, productID)
		if err != nil {
			return err
		}
		if item.Quantity > product.Stock {
			return insufficientStock(product.Name)
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "add cart item failed")
	}
	return item, nil
}

func (s *CartService) ChangeQuantity(ctx context.Context, userID, productID int64, operation string) (*model.CartItem, error) {
	delta, err := ParseQuantityOperation(operation)
	if err != nil {
		return nil, err
	}

	var item *model.CartItem
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		// 先鎖住購物車行, 再讀最新庫存
		line, err := q.GetCartItemForUpdate(ctx, userID, productID)
		if err != nil {
			if errors.Is(err, repository.ErrCartItemNotFound) {
				return ErrNotInCart
			}
			return err
		}
		product, err := getProduct(ctx, q, productID)
		if err != nil {
			return err
		}

		quantity := line.Quantity + delta
		if quantity <= 0 {
			return q.DeleteCartItem(ctx, userID, productID)
		}
		if quantity > product.Stock {
			return insufficientStock(product.Name)
		}
		if err := q.UpdateCartItemQuantity(ctx, userID, productID, quantity); err != nil {
			return err
		}
		line.Quantity = quantity
		line.Product = product
		item = line
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "change cart quantity failed")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := getProduct(ctx, q, productID); err != nil {
			return err
		}
		if err := q.DeleteCartItem(ctx, userID, productID); err != nil {
			if errors.Is(err, repository.ErrCartItemNotFound) {
				return ErrNotInCart
			}
			return err
		}
		return nil
	})
	return translateTxError(err, "remove cart item failed")
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list cart failed")
	}
	if len(items) == 0 {
		return nil, ErrCartNotFound
	}
	return &CartView{Items: items, Total: cartTotal(items)}, nil
}

func (s *CartService) Clear(ctx context.Context, userID int64, productIDs []int64) error {
	if err := s.store.DeleteCartItems(ctx, userID, productIDs); err != nil {
		return apperr.Internal(err, "clear cart failed")
	}
	return nil
}

func cartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineAmount())
	}
	return total
}

func getProduct(ctx context.Context, q repository.IProductRepository, productID int64) (*model.Product, error) {
	product, err := q.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotExist
		}
		return nil, err
	}
	return product, nil
}

// translateTxError 已分類的錯誤原樣回傳, 可重試的交易錯誤轉成 503, 其餘視為 internal
func translateTxError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrRetryableTx) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindUnavailable, err, "service busy, please retry")
	}
	return apperr.Internal(err, msg)
}
