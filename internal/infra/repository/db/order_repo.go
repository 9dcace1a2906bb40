package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrder 訂單與明細分兩次寫入, 呼叫端需在交易中使用
func (q *Queries) CreateOrder(ctx context.Context, order *model.Order) error {
	tx := q.db.WithContext(ctx)
	if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.OrderID
	}
	return tx.Omit(clause.Associations).Create(&order.Items).Error
}

func (q *Queries) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := q.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
		Preload("Items.Product").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (q *Queries) ListOrdersByUserID(ctx context.Context, userID int64, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	tx := q.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	err := tx.Order("order_date DESC").Find(&orders).Error
	return orders, err
}

// ListOrdersAwaitingTicket 待取貨且尚未產生憑證, 最舊的先
func (q *Queries) ListOrdersAwaitingTicket(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := q.db.WithContext(ctx).
		Where("status = ? AND ticket = ''", model.OrderStatusPending).
		Order("order_date").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (q *Queries) UpdateOrderTicket(ctx context.Context, orderID string, ticket string) error {
	res := q.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("ticket", ticket)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := q.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}
