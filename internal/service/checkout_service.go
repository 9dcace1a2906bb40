package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/producer"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

type ICheckoutService interface {
	Checkout(ctx context.Context, userID int64, billing BillingInput) (*model.OrderReceipt, error)
}

// TicketDispatcher 交易提交後把訂單交給取貨憑證產生流程
type TicketDispatcher interface {
	Enqueue(orderID string) bool
}

// CatalogInvalidator 庫存異動後清除目錄快取
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// StockDecrementer 扣庫存, q 為 checkout 的 transaction
type StockDecrementer interface {
	DecrementInTx(ctx context.Context, q repository.IProductRepository, product *model.Product, amount int) error
}

type CheckoutService struct {
	store      repository.Store
	inventory  StockDecrementer
	tickets    TicketDispatcher
	events     producer.IOrderEventProducer
	catalog    CatalogInvalidator
	metrics    *metrics.Metrics
	logger     *zerolog.Logger
	timeout    time.Duration
	now        func() time.Time
	publishing sync.WaitGroup
}

func NewCheckoutService(
	store repository.Store,
	inventory StockDecrementer,
	tickets TicketDispatcher,
	events producer.IOrderEventProducer,
	catalog CatalogInvalidator,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	timeout time.Duration,
) *CheckoutService {
	if store == nil {
		panic("store cannot be nil")
	}
	if inventory == nil {
		inventory = NewInventoryService(store)
	}
	if timeout <= 0 {
		timeout = constants.DefaultCheckoutTimeout
	}
	if events == nil {
		events = producer.NewNopOrderEventProducer(logger)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CheckoutService{
		store:     store,
		inventory: inventory,
		tickets:   tickets,
		events:    events,
		catalog:   catalog,
		metrics:   m,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

/*
Checkout 購物車 => 付款紀錄 => 訂單 => 訂單明細 => 扣庫存 => 清除本次結帳的購物車行
全部在同一個交易內, 任一步失敗整筆回滾
提交後才發布事件, 清快取, 排入取貨憑證產生, 不等待憑證完成
*/
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, billing BillingInput) (receipt *model.OrderReceipt, err error) {
	start := s.now()
	defer func() {
		s.metrics.ObserveCheckout(checkoutResult(err), s.now().Sub(start))
	}()

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var order *model.Order
	var total decimal.Decimal
	err = s.store.ExecTx(txCtx, func(q repository.Querier) error {
		if _, err := q.GetUserByID(txCtx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrUserNotExist
			}
			return err
		}

		items, err := q.ListCartItemsForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// 以結帳當下的價格計算
		total = decimal.Zero
		for _, item := range items {
			if item.Product == nil {
				return apperr.Internal(repository.ErrProductNotFound, "cart references a missing product")
			}
			total = total.Add(item.LineAmount())
		}

		details, err := resolvePaymentDetails(txCtx, q, userID, billing)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		payment := &model.Payment{
			UserID:           userID,
			Amount:           total,
			PaidAt:           now.Truncate(24 * time.Hour),
			PaymentDetailsID: details.PaymentDetailsID,
		}
		if err := q.CreatePayment(txCtx, payment); err != nil {
			return err
		}

		order = &model.Order{
			OrderID:   uuid.NewString(),
			UserID:    userID,
			OrderDate: now,
			Status:    model.OrderStatusPending,
			PaymentID: payment.PaymentID,
			Items:     make([]model.OrderItem, 0, len(items)),
		}
		productIDs := make([]int64, 0, len(items))
		for _, item := range items {
			order.Items = append(order.Items, model.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
			productIDs = append(productIDs, item.ProductID)
		}
		if err := q.CreateOrder(txCtx, order); err != nil {
			return err
		}

		for _, item := range items {
			if err := s.inventory.DecrementInTx(txCtx, q, item.Product, item.Quantity); err != nil {
				return err
			}
		}

		// 只刪本次快照中的行, 結帳期間新加入的商品保留
		return q.DeleteCartItems(txCtx, userID, productIDs)
	})
	if err != nil {
		if ctxErr := txCtx.Err(); ctxErr != nil && ctx.Err() == nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, ctxErr, ErrCheckoutUnavailable.Message)
		}
		if errors.Is(err, repository.ErrRetryableTx) {
			return nil, apperr.Wrap(apperr.KindUnavailable, err, ErrCheckoutUnavailable.Message)
		}
		return nil, translateTxError(err, "checkout failed")
	}

	s.afterCommit(ctx, order, total)

	return &model.OrderReceipt{
		OrderID: order.OrderID,
		Status:  order.Status,
		Total:   total,
	}, nil
}

// afterCommit 任何失敗都只記 log, 不影響已提交的結帳
func (s *CheckoutService) afterCommit(ctx context.Context, order *model.Order, total decimal.Decimal) {
	bg := context.WithoutCancel(ctx)

	if s.catalog != nil {
		s.catalog.Invalidate(bg)
	}

	if s.tickets != nil && !s.tickets.Enqueue(order.OrderID) {
		// 佇列滿了, 交給 recovery poller
		s.logger.Warn().Str("order_id", order.OrderID).Msg("ticket queue full, deferring to recovery")
	}

	event := model.OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  model.OrderPlacedEventName,
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		Amount:     total,
		Items:      orderEventItems(order.Items),
		OccurredAt: order.OrderDate,
	}
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		pubCtx, cancel := context.WithTimeout(bg, publishTimeout)
		defer cancel()
		if err := s.events.Publish(pubCtx, event); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("publish order placed event failed")
		}
	}()
}

// Wait 等待背景事件發布完成, 關機時使用
func (s *CheckoutService) Wait() {
	s.publishing.Wait()
}

func orderEventItems(items []model.OrderItem) []model.OrderEventItem {
	out := make([]model.OrderEventItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func checkoutResult(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	if errors.Is(err, ErrEmptyCart) {
		return metrics.ResultEmptyCart
	}
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		return metrics.ResultNoStock
	case apperr.KindValidation, apperr.KindNotFound:
		return metrics.ResultInvalid
	case apperr.KindUnavailable:
		return metrics.ResultUnavailable
	default:
		return metrics.ResultError
	}
}
