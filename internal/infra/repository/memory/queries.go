package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

var _ repository.Querier = (*queries)(nil)

// queries 不上鎖, 由 Store 保證同一時間只有一個呼叫者
type queries struct {
	d *dataset
}

func (q *queries) GetProductByID(ctx context.Context, productID int64) (*model.Product, error) {
	p, ok := q.d.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (q *queries) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	for _, p := range q.d.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (q *queries) GetProductStock(ctx context.Context, productID int64) (int, error) {
	p, ok := q.d.products[productID]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	return p.Stock, nil
}

func (q *queries) DeductProductStock(ctx context.Context, productID int64, quantity int) (int, error) {
	p, ok := q.d.products[productID]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return 0, repository.ErrStockNotEnough
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	q.d.products[productID] = p
	return p.Stock, nil
}

func (q *queries) CreateProduct(ctx context.Context, product *model.Product) error {
	if _, err := q.GetProductByName(ctx, product.Name); err == nil {
		return repository.ErrDuplicateProduct
	}
	if _, ok := q.d.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	q.d.nextProductID++
	product.ProductID = q.d.nextProductID
	product.CreatedAt = time.Now().UTC()
	q.d.products[product.ProductID] = *product
	return nil
}

func (q *queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := slices.Collect(maps.Values(q.d.categories))
	slices.SortFunc(categories, func(a, b model.Category) int { return cmp.Compare(a.CategoryID, b.CategoryID) })
	return categories, nil
}

func (q *queries) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	for _, c := range q.d.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (q *queries) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	var products []model.Product
	for _, p := range q.d.products {
		if p.CategoryID == categoryID {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b model.Product) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return products, nil
}

func (q *queries) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := q.d.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (q *queries) IncrementCartItem(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	key := cartKey{userID, productID}
	item, ok := q.d.cart[key]
	now := time.Now().UTC()
	if ok {
		item.Quantity++
		item.UpdatedAt = now
	} else {
		item = model.CartItem{UserID: userID, ProductID: productID, Quantity: 1}
		item.CreatedAt = now
	}
	q.d.cart[key] = item
	return &item, nil
}

func (q *queries) GetCartItemForUpdate(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	item, ok := q.d.cart[cartKey{userID, productID}]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	return &item, nil
}

func (q *queries) UpdateCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	key := cartKey{userID, productID}
	item, ok := q.d.cart[key]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now().UTC()
	q.d.cart[key] = item
	return nil
}

func (q *queries) DeleteCartItem(ctx context.Context, userID, productID int64) error {
	key := cartKey{userID, productID}
	if _, ok := q.d.cart[key]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(q.d.cart, key)
	return nil
}

func (q *queries) DeleteCartItems(ctx context.Context, userID int64, productIDs []int64) error {
	for _, id := range productIDs {
		delete(q.d.cart, cartKey{userID, id})
	}
	return nil
}

func (q *queries) ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	for key, item := range q.d.cart {
		if key.userID != userID {
			continue
		}
		if p, ok := q.d.products[item.ProductID]; ok {
			item.Product = &p
		}
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b model.CartItem) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return items, nil
}

func (q *queries) ListCartItemsForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return q.ListCartItems(ctx, userID)
}

func (q *queries) GetPaymentDetailsByUserID(ctx context.Context, userID int64) (*model.PaymentDetails, error) {
	d, ok := q.d.paymentDetails[userID]
	if !ok {
		return nil, repository.ErrPaymentDetailsNotFound
	}
	return &d, nil
}

func (q *queries) CreatePaymentDetailsIfNotExists(ctx context.Context, details *model.PaymentDetails) (*model.PaymentDetails, error) {
	if existing, ok := q.d.paymentDetails[details.UserID]; ok {
		return &existing, nil
	}
	q.d.nextPaymentDetailsID++
	created := *details
	created.PaymentDetailsID = q.d.nextPaymentDetailsID
	created.CreatedAt = time.Now().UTC()
	q.d.paymentDetails[created.UserID] = created
	return &created, nil
}

func (q *queries) CreatePayment(ctx context.Context, payment *model.Payment) error {
	q.d.nextPaymentID++
	payment.PaymentID = q.d.nextPaymentID
	payment.CreatedAt = time.Now().UTC()
	q.d.payments[payment.PaymentID] = *payment
	return nil
}

func (q *queries) GetPaymentByID(ctx context.Context, paymentID int64) (*model.Payment, error) {
	p, ok := q.d.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &p, nil
}

func (q *queries) CreateOrder(ctx context.Context, order *model.Order) error {
	if _, ok := q.d.orders[order.OrderID]; ok {
		return ErrDuplicateOrder
	}
	order.CreatedAt = time.Now().UTC()
	stored := *order
	stored.Items = make([]model.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = order.OrderID
		item.Product = nil
		stored.Items[i] = item
		order.Items[i].OrderID = order.OrderID
	}
	q.d.orders[order.OrderID] = stored
	return nil
}

func (q *queries) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	o, ok := q.d.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o = q.withProducts(o)
	return &o, nil
}

func (q *queries) ListOrdersByUserID(ctx context.Context, userID int64, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range q.d.orders {
		if o.UserID != userID || (status != "" && o.Status != status) {
			continue
		}
		orders = append(orders, q.withProducts(o))
	}
	slices.SortFunc(orders, func(a, b model.Order) int { return b.OrderDate.Compare(a.OrderDate) })
	return orders, nil
}

func (q *queries) ListOrdersAwaitingTicket(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range q.d.orders {
		if o.Status == model.OrderStatusPending && o.Ticket == "" {
			o.Items = slices.Clone(o.Items)
			orders = append(orders, o)
		}
	}
	slices.SortFunc(orders, func(a, b model.Order) int { return a.OrderDate.Compare(b.OrderDate) })
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (q *queries) UpdateOrderTicket(ctx context.Context, orderID string, ticket string) error {
	o, ok := q.d.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Ticket = ticket
	o.UpdatedAt = time.Now().UTC()
	q.d.orders[orderID] = o
	return nil
}

func (q *queries) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	o, ok := q.d.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	q.d.orders[orderID] = o
	return nil
}

// withProducts 回傳副本並附上商品資料
func (q *queries) withProducts(o model.Order) model.Order {
	items := make([]model.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if p, ok := q.d.products[item.ProductID]; ok {
			item.Product = &p
		}
		items[i] = item
	}
	slices.SortFunc(items, func(a, b model.OrderItem) int { return cmp.Compare(a.ProductID, b.ProductID) })
	o.Items = items
	return o
}
