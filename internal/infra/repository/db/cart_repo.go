package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (q *Queries) IncrementCartItem(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	}
	err := q.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + 1"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}
	return q.getCartItem(q.db.WithContext(ctx), userID, productID)
}

// GetCartItemForUpdate 鎖住該行直到交易結束
func (q *Queries) GetCartItemForUpdate(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	return q.getCartItem(q.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, productID)
}

func (q *Queries) getCartItem(tx *gorm.DB, userID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	res := q.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}
	return nil
}

func (q *Queries) DeleteCartItem(ctx context.Context, userID, productID int64) error {
	res := q.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}
	return nil
}

func (q *Queries) DeleteCartItems(ctx context.Context, userID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartItem{}).Error
}

func (q *Queries) ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := q.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("product_id").
		Find(&items).Error
	return items, err
}

// ListCartItemsForUpdate 依 product_id 排序上鎖, 商品資料另外載入避免鎖到 products
func (q *Queries) ListCartItemsForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := q.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("product_id").
		Find(&items).Error
	if err != nil || len(items) == 0 {
		return items, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	var products []model.Product
	if err := q.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return items, nil
}
