package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// countingInventory 記錄 checkout 經過庫存服務扣庫存的次數
type countingInventory struct {
	*InventoryService
	mu    sync.Mutex
	calls int
}

func (c *countingInventory) DecrementInTx(ctx context.Context, q repository.IProductRepository, product *model.Product, amount int) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.InventoryService.DecrementInTx(ctx, q, product, amount)
}

func (c *countingInventory) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type checkoutFixture struct {
	env        *testEnv
	svc        *CheckoutService
	inventory  *countingInventory
	dispatcher *fakeDispatcher
	catalog    *fakeInvalidator
	events     *fakeProducer
}

func newCheckoutFixture(t *testing.T, timeout time.Duration) *checkoutFixture {
	t.Helper()
	env := newTestEnv(t)
	f := &checkoutFixture{
		env:        env,
		inventory:  &countingInventory{InventoryService: NewInventoryService(env.store)},
		dispatcher: &fakeDispatcher{},
		catalog:    &fakeInvalidator{},
		events:     &fakeProducer{},
	}
	f.svc = NewCheckoutService(env.store, f.inventory, f.dispatcher, f.events, f.catalog, metrics.New(prometheus.NewRegistry()), nil, timeout)
	return f
}

func TestCheckoutSuccess(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	ctx := context.Background()
	a := f.env.addProduct(t, "ProductA", "5.00", 10)
	f.env.putInCart(t, testUserID, a.ProductID, 2)

	receipt, err := f.svc.Checkout(ctx, testUserID, testBilling)
	require.NoError(t, err)
	require.NotEmpty(t, receipt.OrderID)
	require.Equal(t, model.OrderStatusPending, receipt.Status)
	require.True(t, receipt.Total.Equal(decimal.RequireFromString("10.00")))

	require.Equal(t, 8, f.env.stockOf(t, a.ProductID))
	require.Equal(t, 1, f.inventory.callCount())

	order, err := f.env.store.GetOrderByID(ctx, receipt.OrderID)
	require.NoError(t, err)
	require.Equal(t, testUserID, order.UserID)
	require.Empty(t, order.Ticket)
	require.Len(t, order.Items, 1)
	require.Equal(t, a.ProductID, order.Items[0].ProductID)
	require.Equal(t, 2, order.Items[0].Quantity)

	payment, err := f.env.store.GetPaymentByID(ctx, order.PaymentID)
	require.NoError(t, err)
	require.True(t, payment.Amount.Equal(decimal.RequireFromString("10.00")))

	items, err := f.env.store.ListCartItems(ctx, testUserID)
	require.NoError(t, err)
	require.Empty(t, items)

	// 提交後的副作用
	require.Equal(t, []string{receipt.OrderID}, f.dispatcher.queued())
	require.Equal(t, 1, f.catalog.calls())
	f.svc.Wait()
	events := f.events.published()
	require.Len(t, events, 1)
	require.Equal(t, model.OrderPlacedEventName, events[0].EventType)
	require.Equal(t, receipt.OrderID, events[0].OrderID)
}

func TestCheckoutInsufficientStockIsAtomic(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	ctx := context.Background()
	a := f.env.addProduct(t, "ProductA", "5.00", 10)
	b := f.env.addProduct(t, "ProductB", "3.00", 0)
	f.env.putInCart(t, testUserID, a.ProductID, 2)
	f.env.putInCart(t, testUserID, b.ProductID, 1)

	_, err := f.svc.Checkout(ctx, testUserID, testBilling)
	require.ErrorIs(t, err, repository.ErrStockNotEnough)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Contains(t, apperr.PublicMessage(err), "ProductB")

	require.Equal(t, 10, f.env.stockOf(t, a.ProductID))
	require.Zero(t, f.env.store.CountOrders())
	require.Zero(t, f.env.store.CountPayments())
	items, err := f.env.store.ListCartItems(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Empty(t, f.dispatcher.queued())
	require.Zero(t, f.catalog.calls())
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)

	_, err := f.svc.Checkout(context.Background(), testUserID, testBilling)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCheckoutUnknownUser(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)

	_, err := f.svc.Checkout(context.Background(), 999, testBilling)
	require.ErrorIs(t, err, ErrUserNotExist)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckoutInvalidBilling(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	a := f.env.addProduct(t, "ProductA", "5.00", 10)
	f.env.putInCart(t, testUserID, a.ProductID, 1)

	_, err := f.svc.Checkout(context.Background(), testUserID, BillingInput{CardNumber: "4111"})
	require.ErrorIs(t, err, ErrInvalidBillingDetails)
	require.Equal(t, 10, f.env.stockOf(t, a.ProductID))
	require.Zero(t, f.env.store.CountPayments())
}

// 第一次的付款資料之後一直沿用, 不需要也不會被覆蓋
func TestCheckoutReusesBillingDetails(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	ctx := context.Background()
	a := f.env.addProduct(t, "ProductA", "5.00", 10)

	f.env.putInCart(t, testUserID, a.ProductID, 1)
	_, err := f.svc.Checkout(ctx, testUserID, testBilling)
	require.NoError(t, err)

	f.env.putInCart(t, testUserID, a.ProductID, 1)
	_, err = f.svc.Checkout(ctx, testUserID, BillingInput{CardNumber: "5555", CVV: "9", ExpiryDate: "01/31", HolderName: "Outro"})
	require.NoError(t, err)

	f.env.putInCart(t, testUserID, a.ProductID, 1)
	_, err = f.svc.Checkout(ctx, testUserID, BillingInput{})
	require.NoError(t, err)

	details, err := f.env.store.GetPaymentDetailsByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, testBilling.CardNumber, details.CardNumber)
	require.Equal(t, 7, f.env.stockOf(t, a.ProductID))
}

// 同一個使用者同時結帳, 最多一次成功, 不會重複扣庫存
func TestCheckoutConcurrentSameCart(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	a := f.env.addProduct(t, "ProductA", "5.00", 10)
	f.env.putInCart(t, testUserID, a.ProductID, 5)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(context.Background(), testUserID, testBilling)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrEmptyCart)
	}
	require.Equal(t, 1, success)
	require.Equal(t, 5, f.env.stockOf(t, a.ProductID))
	require.Equal(t, 1, f.env.store.CountOrders())
}

// 不同使用者搶同一個商品, 庫存不會變負
func TestCheckoutConcurrentNeverOversells(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	a := f.env.addProduct(t, "ProductA", "5.00", 3)
	users := []int64{10, 11, 12, 13, 14}
	for _, id := range users {
		f.env.store.AddUser(model.User{UserID: id, Name: "u", Email: "u@example.com"})
		f.env.putInCart(t, id, a.ProductID, 1)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0
	for _, id := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := f.svc.Checkout(context.Background(), id, testBilling); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	require.Equal(t, 3, success)
	require.Zero(t, f.env.stockOf(t, a.ProductID))
}

func TestCheckoutTimeoutIsRetryable(t *testing.T) {
	f := newCheckoutFixture(t, 20*time.Millisecond)
	a := f.env.addProduct(t, "ProductA", "5.00", 10)
	f.env.putInCart(t, testUserID, a.ProductID, 1)

	// 另一個交易佔住鎖
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = f.env.store.ExecTx(context.Background(), func(q repository.Querier) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	_, err := f.svc.Checkout(context.Background(), testUserID, testBilling)
	close(hold)
	require.Error(t, err)
	require.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	require.Equal(t, 10, f.env.stockOf(t, a.ProductID))
}
