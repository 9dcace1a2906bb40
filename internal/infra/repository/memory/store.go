package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrDuplicateOrder  = errors.New("order already exists")
	ErrStoreClosed     = errors.New("store closed")
)

var _ repository.Store = (*Store)(nil)

/*
記憶體版本的 Store, 測試與 STORAGE_DRIVER=memory 使用
所有操作共用一把鎖(容量 1 的 channel, 可被 ctx 取消)
交易在副本上執行, fn 成功且 ctx 未逾時才替換
*/
type Store struct {
	sem    chan struct{}
	data   *dataset
	closed bool
}

func NewStore() *Store {
	return &Store{
		sem:  make(chan struct{}, 1),
		data: newDataset(),
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", repository.ErrRetryableTx, ctx.Err())
	}
	if s.closed {
		s.release()
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) release() {
	<-s.sem
}

func (s *Store) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	draft := s.data.clone()
	if err := fn(&queries{d: draft}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrRetryableTx, err)
	}
	s.data = draft
	return nil
}

func (s *Store) Close() error {
	s.sem <- struct{}{}
	defer s.release()
	s.closed = true
	return nil
}

// run 在目前資料上執行單一操作
func run[T any](s *Store, ctx context.Context, fn func(*queries) (T, error)) (T, error) {
	var zero T
	if err := s.acquire(ctx); err != nil {
		return zero, err
	}
	defer s.release()
	return fn(&queries{d: s.data})
}

func runErr(s *Store, ctx context.Context, fn func(*queries) error) error {
	_, err := run(s, ctx, func(q *queries) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}

func (s *Store) GetProductByID(ctx context.Context, productID int64) (*model.Product, error) {
	return run(s, ctx, func(q *queries) (*model.Product, error) { return q.GetProductByID(ctx, productID) })
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	return run(s, ctx, func(q *queries) (*model.Product, error) { return q.GetProductByName(ctx, name) })
}

func (s *Store) GetProductStock(ctx context.Context, productID int64) (int, error) {
	return run(s, ctx, func(q *queries) (int, error) { return q.GetProductStock(ctx, productID) })
}

func (s *Store) DeductProductStock(ctx context.Context, productID int64, quantity int) (int, error) {
	return run(s, ctx, func(q *queries) (int, error) { return q.DeductProductStock(ctx, productID, quantity) })
}

func (s *Store) CreateProduct(ctx context.Context, product *model.Product) error {
	return runErr(s, ctx, func(q *queries) error { return q.CreateProduct(ctx, product) })
}

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	return run(s, ctx, func(q *queries) ([]model.Category, error) { return q.ListCategories(ctx) })
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return run(s, ctx, func(q *queries) (*model.Category, error) { return q.GetCategoryByName(ctx, name) })
}

func (s *Store) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return run(s, ctx, func(q *queries) ([]model.Product, error) { return q.ListProductsByCategory(ctx, categoryID) })
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return run(s, ctx, func(q *queries) (*model.User, error) { return q.GetUserByID(ctx, userID) })
}

func (s *Store) IncrementCartItem(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	return run(s, ctx, func(q *queries) (*model.CartItem, error) { return q.IncrementCartItem(ctx, userID, productID) })
}

func (s *Store) GetCartItemForUpdate(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	return run(s, ctx, func(q *queries) (*model.CartItem, error) { return q.GetCartItemForUpdate(ctx, userID, productID) })
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	return runErr(s, ctx, func(q *queries) error { return q.UpdateCartItemQuantity(ctx, userID, productID, quantity) })
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, productID int64) error {
	return runErr(s, ctx, func(q *queries) error { return q.DeleteCartItem(ctx, userID, productID) })
}

func (s *Store) DeleteCartItems(ctx context.Context, userID int64, productIDs []int64) error {
	return runErr(s, ctx, func(q *queries) error { return q.DeleteCartItems(ctx, userID, productIDs) })
}

func (s *Store) ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return run(s, ctx, func(q *queries) ([]model.CartItem, error) { return q.ListCartItems(ctx, userID) })
}

func (s *Store) ListCartItemsForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return run(s, ctx, func(q *queries) ([]model.CartItem, error) { return q.ListCartItemsForUpdate(ctx, userID) })
}

func (s *Store) GetPaymentDetailsByUserID(ctx context.Context, userID int64) (*model.PaymentDetails, error) {
	return run(s, ctx, func(q *queries) (*model.PaymentDetails, error) { return q.GetPaymentDetailsByUserID(ctx, userID) })
}

func (s *Store) CreatePaymentDetailsIfNotExists(ctx context.Context, details *model.PaymentDetails) (*model.PaymentDetails, error) {
	return run(s, ctx, func(q *queries) (*model.PaymentDetails, error) {
		return q.CreatePaymentDetailsIfNotExists(ctx, details)
	})
}

func (s *Store) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return runErr(s, ctx, func(q *queries) error { return q.CreatePayment(ctx, payment) })
}

func (s *Store) GetPaymentByID(ctx context.Context, paymentID int64) (*model.Payment, error) {
	return run(s, ctx, func(q *queries) (*model.Payment, error) { return q.GetPaymentByID(ctx, paymentID) })
}

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	return runErr(s, ctx, func(q *queries) error { return q.CreateOrder(ctx, order) })
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	return run(s, ctx, func(q *queries) (*model.Order, error) { return q.GetOrderByID(ctx, orderID) })
}

func (s *Store) ListOrdersByUserID(ctx context.Context, userID int64, status model.OrderStatus) ([]model.Order, error) {
	return run(s, ctx, func(q *queries) ([]model.Order, error) { return q.ListOrdersByUserID(ctx, userID, status) })
}

func (s *Store) ListOrdersAwaitingTicket(ctx context.Context, limit int) ([]model.Order, error) {
	return run(s, ctx, func(q *queries) ([]model.Order, error) { return q.ListOrdersAwaitingTicket(ctx, limit) })
}

func (s *Store) UpdateOrderTicket(ctx context.Context, orderID string, ticket string) error {
	return runErr(s, ctx, func(q *queries) error { return q.UpdateOrderTicket(ctx, orderID, ticket) })
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	return runErr(s, ctx, func(q *queries) error { return q.UpdateOrderStatus(ctx, orderID, status) })
}

// 以下為初始化資料使用, 不在 repository 介面中

func (s *Store) AddCategory(name string) model.Category {
	s.sem <- struct{}{}
	defer s.release()
	s.data.nextCategoryID++
	c := model.Category{CategoryID: s.data.nextCategoryID, Name: name}
	c.CreatedAt = time.Now().UTC()
	s.data.categories[c.CategoryID] = c
	return c
}

func (s *Store) AddProduct(p model.Product) (model.Product, error) {
	err := s.CreateProduct(context.Background(), &p)
	return p, err
}

func (s *Store) AddUser(u model.User) {
	s.sem <- struct{}{}
	defer s.release()
	u.CreatedAt = time.Now().UTC()
	s.data.users[u.UserID] = u
}

func (s *Store) CountPayments() int {
	s.sem <- struct{}{}
	defer s.release()
	return len(s.data.payments)
}

func (s *Store) CountOrders() int {
	s.sem <- struct{}{}
	defer s.release()
	return len(s.data.orders)
}
