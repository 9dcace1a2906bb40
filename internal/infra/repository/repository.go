package repository

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrStockNotEnough 商品庫存不足
	ErrStockNotEnough = errors.New("product stock not enough")
	// ErrDuplicateProduct 商品名稱重複
	ErrDuplicateProduct       = errors.New("product name already exists")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrCartItemNotFound       = errors.New("cart item not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrPaymentDetailsNotFound = errors.New("payment details not found")
	// ErrRetryableTx 逾時, 死結, 序列化失敗等可重試的交易錯誤
	ErrRetryableTx = errors.New("transaction aborted, retry later")
)

type IProductRepository interface {
	GetProductByID(ctx context.Context, productID int64) (*model.Product, error)
	GetProductByName(ctx context.Context, name string) (*model.Product, error)
	GetProductStock(ctx context.Context, productID int64) (int, error)
	// DeductProductStock 條件式扣減, 庫存不足回傳 ErrStockNotEnough 且不異動
	DeductProductStock(ctx context.Context, productID int64, quantity int) (int, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
}

type IUserRepository interface {
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

type ICartRepository interface {
	// IncrementCartItem 不存在時以數量 1 建立, 存在時 +1
	IncrementCartItem(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	GetCartItemForUpdate(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error
	DeleteCartItem(ctx context.Context, userID, productID int64) error
	// DeleteCartItems 只刪除指定的商品行
	DeleteCartItems(ctx context.Context, userID int64, productIDs []int64) error
	ListCartItems(ctx context.Context, userID int64) ([]model.CartItem, error)
	ListCartItemsForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error)
}

type IPaymentRepository interface {
	GetPaymentDetailsByUserID(ctx context.Context, userID int64) (*model.PaymentDetails, error)
	// CreatePaymentDetailsIfNotExists 先寫先贏, 回傳最終存在的那一筆
	CreatePaymentDetailsIfNotExists(ctx context.Context, details *model.PaymentDetails) (*model.PaymentDetails, error)
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPaymentByID(ctx context.Context, paymentID int64) (*model.Payment, error)
}

type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	// ListOrdersByUserID status 為空字串時回傳全部
	ListOrdersByUserID(ctx context.Context, userID int64, status model.OrderStatus) ([]model.Order, error)
	ListOrdersAwaitingTicket(ctx context.Context, limit int) ([]model.Order, error)
	UpdateOrderTicket(ctx context.Context, orderID string, ticket string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

type Querier interface {
	IProductRepository
	IUserRepository
	ICartRepository
	IPaymentRepository
	IOrderRepository
}

// Store fn 回傳錯誤時整筆交易回滾
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
	Close() error
}
