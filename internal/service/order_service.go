package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ticket"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

type IOrderService interface {
	GetOrder(ctx context.Context, orderID string, requestingUserID int64) (*model.Order, error)
	ListPending(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	ConfirmPickup(ctx context.Context, orderID string, token string) (*model.Order, error)
}

type OrderService struct {
	store    repository.Store
	verifier TicketGenerator
}

func NewOrderService(store repository.Store, verifier TicketGenerator) *OrderService {
	return &OrderService{store: store, verifier: verifier}
}

// GetOrder 只有訂單擁有者可以讀取, 不存在與不屬於自己回傳同一個錯誤
func (s *OrderService) GetOrder(ctx context.Context, orderID string, requestingUserID int64) (*model.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperr.Internal(err, "get order failed")
	}
	if order.UserID != requestingUserID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListPending(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.store.ListOrdersByUserID(ctx, userID, model.OrderStatusPending)
	if err != nil {
		return nil, apperr.Internal(err, "list orders failed")
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.store.ListOrdersByUserID(ctx, userID, "")
	if err != nil {
		return nil, apperr.Internal(err, "list orders failed")
	}
	return orders, nil
}

// UpdateStatus 外部流程(例如櫃台)推進訂單狀態, 只允許狀態表內的轉換
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var order *model.Order
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		order, err = s.transition(ctx, q, orderID, status)
		return err
	})
	if err != nil {
		return nil, translateTxError(err, "update order status failed")
	}
	return order, nil
}

// ConfirmPickup 櫃台掃描 QR code 後核對憑證, 成功則訂單完成
func (s *OrderService) ConfirmPickup(ctx context.Context, orderID string, token string) (*model.Order, error) {
	var order *model.Order
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		current, err := q.GetOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return apperr.New(apperr.KindNotFound, "order not found")
			}
			return err
		}
		if !current.TicketReady() {
			return ErrTicketNotReady
		}

		// 顯示名稱不在 digest 內, 只核對訂單明細
		if _, err := s.verifier.Verify(token, ticket.PayloadFromOrder(current, "")); err != nil {
			return apperr.Wrap(apperr.KindValidation, err, ErrTicketMismatch.Message)
		}

		order, err = s.transition(ctx, q, orderID, model.OrderStatusFulfilled)
		return err
	})
	if err != nil {
		return nil, translateTxError(err, "confirm pickup failed")
	}
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, q repository.Querier, orderID string, next model.OrderStatus) (*model.Order, error) {
	order, err := q.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order not found")
		}
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if err := q.UpdateOrderStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next
	return order, nil
}
