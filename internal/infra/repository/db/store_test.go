package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const (
	testDbName = "bar_test"
	testDbHost = "localhost"
	testDbPort = "5432"
	testDbUser = "postgres"
	testDbPas  = "password"
)

type StoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *GormStore
	user  *model.User
	cat   *model.Category
}

// SetupSuite 連不上本機資料庫時略過整個測試套件
func (suite *StoreTestSuite) SetupSuite() {
	db, err := GetDbConn(testDbName, testDbHost, testDbPort, testDbUser, testDbPas)
	if err != nil {
		suite.T().Skipf("postgres not available: %v", err)
	}
	err = RunDBMigration("file://migrations", MigrationDSN(testDbName, testDbHost, testDbPort, testDbUser, testDbPas))
	require.NoError(suite.T(), err)

	suite.db = db
	suite.store = NewStore(db)
}

// SetupTest 在每個測試前執行
func (suite *StoreTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("TRUNCATE order_items, orders, payments, payment_details, cart_items, products, users, categories RESTART IDENTITY CASCADE")

	ctx := context.Background()
	suite.user = &model.User{UserID: 1, Name: "Ana", Email: "ana@example.com", Role: "user"}
	require.NoError(suite.T(), suite.store.UpsertUser(ctx, suite.user))
	suite.cat = &model.Category{Name: "Bebidas"}
	require.NoError(suite.T(), suite.store.CreateCategory(ctx, suite.cat))
}

// TearDownSuite 在測試套件結束後執行
func (suite *StoreTestSuite) TearDownSuite() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) createProduct(name string, price string, stock int) *model.Product {
	p := &model.Product{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CategoryID:  suite.cat.CategoryID,
	}
	require.NoError(suite.T(), suite.store.CreateProduct(context.Background(), p))
	return p
}

func (suite *StoreTestSuite) TestCreateProductDuplicateName() {
	suite.createProduct("Cerveja", "2.50", 10)

	err := suite.store.CreateProduct(context.Background(), &model.Product{
		Name:       "Cerveja",
		Price:      decimal.NewFromInt(1),
		CategoryID: suite.cat.CategoryID,
	})
	require.ErrorIs(suite.T(), err, repository.ErrDuplicateProduct)
}

func (suite *StoreTestSuite) TestDeductProductStock() {
	ctx := context.Background()
	p := suite.createProduct("Agua", "1.00", 3)

	stock, err := suite.store.DeductProductStock(ctx, p.ProductID, 2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, stock)

	_, err = suite.store.DeductProductStock(ctx, p.ProductID, 2)
	require.ErrorIs(suite.T(), err, repository.ErrStockNotEnough)

	_, err = suite.store.DeductProductStock(ctx, 9999, 1)
	require.ErrorIs(suite.T(), err, repository.ErrProductNotFound)

	stock, err = suite.store.GetProductStock(ctx, p.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, stock)
}

// 同時扣減不會超賣
func (suite *StoreTestSuite) TestDeductProductStockConcurrent() {
	ctx := context.Background()
	p := suite.createProduct("Sumo", "1.50", 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := suite.store.DeductProductStock(ctx, p.ProductID, 1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(suite.T(), 5, success)
	stock, err := suite.store.GetProductStock(ctx, p.ProductID)
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), stock)
}

func (suite *StoreTestSuite) TestCartIncrementAndDelete() {
	ctx := context.Background()
	a := suite.createProduct("Cafe", "0.80", 10)
	b := suite.createProduct("Cha", "0.90", 10)

	item, err := suite.store.IncrementCartItem(ctx, suite.user.UserID, a.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, item.Quantity)

	item, err = suite.store.IncrementCartItem(ctx, suite.user.UserID, a.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, item.Quantity)

	_, err = suite.store.IncrementCartItem(ctx, suite.user.UserID, b.ProductID)
	require.NoError(suite.T(), err)

	items, err := suite.store.ListCartItems(ctx, suite.user.UserID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 2)
	require.NotNil(suite.T(), items[0].Product)

	require.NoError(suite.T(), suite.store.DeleteCartItems(ctx, suite.user.UserID, []int64{a.ProductID}))
	items, err = suite.store.ListCartItems(ctx, suite.user.UserID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	require.Equal(suite.T(), b.ProductID, items[0].ProductID)

	err = suite.store.DeleteCartItem(ctx, suite.user.UserID, a.ProductID)
	require.ErrorIs(suite.T(), err, repository.ErrCartItemNotFound)
}

func (suite *StoreTestSuite) TestPaymentDetailsFirstWriteWins() {
	ctx := context.Background()
	first, err := suite.store.CreatePaymentDetailsIfNotExists(ctx, &model.PaymentDetails{
		UserID: suite.user.UserID, CardNumber: "4111", CVV: "123", ExpiryDate: "12/30", HolderName: "Ana",
	})
	require.NoError(suite.T(), err)

	second, err := suite.store.CreatePaymentDetailsIfNotExists(ctx, &model.PaymentDetails{
		UserID: suite.user.UserID, CardNumber: "5555", CVV: "999", ExpiryDate: "01/31", HolderName: "Other",
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), first.PaymentDetailsID, second.PaymentDetailsID)
	require.Equal(suite.T(), "4111", second.CardNumber)
}

func (suite *StoreTestSuite) TestExecTxRollback() {
	ctx := context.Background()
	p := suite.createProduct("Vinho", "5.00", 4)
	errBoom := errors.New("boom")

	err := suite.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.DeductProductStock(ctx, p.ProductID, 4); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(suite.T(), err, errBoom)

	stock, err := suite.store.GetProductStock(ctx, p.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 4, stock)
}

func (suite *StoreTestSuite) TestOrderLifecycle() {
	ctx := context.Background()
	p := suite.createProduct("Tosta", "3.00", 10)

	details, err := suite.store.CreatePaymentDetailsIfNotExists(ctx, &model.PaymentDetails{
		UserID: suite.user.UserID, CardNumber: "4111", CVV: "123", ExpiryDate: "12/30", HolderName: "Ana",
	})
	require.NoError(suite.T(), err)
	payment := &model.Payment{UserID: suite.user.UserID, Amount: decimal.RequireFromString("6.00"), PaymentDetailsID: details.PaymentDetailsID}
	require.NoError(suite.T(), suite.store.CreatePayment(ctx, payment))

	order := &model.Order{
		OrderID:   uuid.NewString(),
		UserID:    suite.user.UserID,
		Status:    model.OrderStatusPending,
		PaymentID: payment.PaymentID,
		Items:     []model.OrderItem{{ProductID: p.ProductID, Quantity: 2}},
	}
	require.NoError(suite.T(), suite.store.CreateOrder(ctx, order))

	awaiting, err := suite.store.ListOrdersAwaitingTicket(ctx, 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), awaiting, 1)

	require.NoError(suite.T(), suite.store.UpdateOrderTicket(ctx, order.OrderID, "data:image/png;base64,AA"))
	// 重複寫入不視為錯誤
	require.NoError(suite.T(), suite.store.UpdateOrderTicket(ctx, order.OrderID, "data:image/png;base64,AA"))

	got, err := suite.store.GetOrderByID(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.True(suite.T(), got.TicketReady())
	require.Len(suite.T(), got.Items, 1)
	require.Equal(suite.T(), "Tosta", got.Items[0].Product.Name)

	pending, err := suite.store.ListOrdersByUserID(ctx, suite.user.UserID, model.OrderStatusPending)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)

	_, err = suite.store.GetOrderByID(ctx, uuid.NewString())
	require.ErrorIs(suite.T(), err, repository.ErrOrderNotFound)
}
