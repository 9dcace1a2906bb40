package memory

import (
	"maps"
	"slices"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

type cartKey struct {
	userID    int64
	productID int64
}

// dataset 全部資料, 交易時整份複製, 成功才替換
type dataset struct {
	categories     map[int64]model.Category
	products       map[int64]model.Product
	users          map[int64]model.User
	cart           map[cartKey]model.CartItem
	paymentDetails map[int64]model.PaymentDetails // key: user id
	payments       map[int64]model.Payment
	orders         map[string]model.Order

	nextCategoryID       int64
	nextProductID        int64
	nextPaymentDetailsID int64
	nextPaymentID        int64
}

func newDataset() *dataset {
	return &dataset{
		categories:     map[int64]model.Category{},
		products:       map[int64]model.Product{},
		users:          map[int64]model.User{},
		cart:           map[cartKey]model.CartItem{},
		paymentDetails: map[int64]model.PaymentDetails{},
		payments:       map[int64]model.Payment{},
		orders:         map[string]model.Order{},
	}
}

func (d *dataset) clone() *dataset {
	c := *d
	c.categories = maps.Clone(d.categories)
	c.products = maps.Clone(d.products)
	c.users = maps.Clone(d.users)
	c.cart = maps.Clone(d.cart)
	c.paymentDetails = maps.Clone(d.paymentDetails)
	c.payments = maps.Clone(d.payments)
	c.orders = make(map[string]model.Order, len(d.orders))
	for id, o := range d.orders {
		o.Items = slices.Clone(o.Items)
		c.orders[id] = o
	}
	return &c
}
