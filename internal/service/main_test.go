package service

import (
	"context"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  int64 = 1
	otherUserID int64 = 2
)

var testBilling = BillingInput{
	CardNumber: "4111111111111111",
	CVV:        "123",
	ExpiryDate: "12/30",
	HolderName: "Ana Silva",
}

type testEnv struct {
	store    *memory.Store
	category model.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	cat := s.AddCategory("Bebidas")
	s.AddUser(model.User{UserID: testUserID, Name: "Ana", Email: "ana@example.com", Role: "user"})
	s.AddUser(model.User{UserID: otherUserID, Name: "Rui", Email: "rui@example.com", Role: "user"})
	return &testEnv{store: s, category: cat}
}

func (e *testEnv) addProduct(t *testing.T, name, price string, stock int) model.Product {
	t.Helper()
	p, err := e.store.AddProduct(model.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: e.category.CategoryID,
	})
	require.NoError(t, err)
	return p
}

// putInCart 直接寫入購物車, 不經過庫存檢查
func (e *testEnv) putInCart(t *testing.T, userID, productID int64, quantity int) {
	t.Helper()
	ctx := context.Background()
	_, err := e.store.IncrementCartItem(ctx, userID, productID)
	require.NoError(t, err)
	require.NoError(t, e.store.UpdateCartItemQuantity(ctx, userID, productID, quantity))
}

func (e *testEnv) stockOf(t *testing.T, productID int64) int {
	t.Helper()
	stock, err := e.store.GetProductStock(context.Background(), productID)
	require.NoError(t, err)
	return stock
}

type fakeDispatcher struct {
	mu     sync.Mutex
	orders []string
}

func (d *fakeDispatcher) Enqueue(orderID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, orderID)
	return true
}

func (d *fakeDispatcher) queued() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.orders...)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	count int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

func (f *fakeInvalidator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

type fakeProducer struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (p *fakeProducer) Publish(ctx context.Context, event model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) published() []model.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderEvent(nil), p.events...)
}
