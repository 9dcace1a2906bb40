package service

import (
	"fmt"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
)

var (
	ErrUnauthorized          = apperr.New(apperr.KindUnauthorized, "unauthorized")
	ErrUserNotExist          = apperr.New(apperr.KindNotFound, "user not found")
	ErrProductNotExist       = apperr.New(apperr.KindValidation, "product not found")
	ErrProductOutOfStock     = apperr.New(apperr.KindValidation, "product out of stock")
	ErrNotInCart             = apperr.New(apperr.KindValidation, "product not in cart")
	ErrInvalidOperation      = apperr.New(apperr.KindValidation, "invalid operation, expected aumentar or diminuir")
	ErrCartNotFound          = apperr.New(apperr.KindNotFound, "cart is empty")
	ErrEmptyCart             = apperr.New(apperr.KindValidation, "cart is empty")
	ErrInvalidBillingDetails = apperr.New(apperr.KindValidation, "card number, cvv, expiry date and holder name are required")
	ErrCheckoutUnavailable   = apperr.New(apperr.KindUnavailable, "checkout temporarily unavailable, please retry")
	// ErrOrderNotFound 訂單不存在與不屬於請求者回傳同一個錯誤
	ErrOrderNotFound     = apperr.New(apperr.KindUnauthorized, "order not found")
	ErrInvalidStatus     = apperr.New(apperr.KindValidation, "invalid order status")
	ErrInvalidTransition = apperr.New(apperr.KindConflict, "order status transition not allowed")
	ErrTicketNotReady    = apperr.New(apperr.KindConflict, "ticket not ready")
	ErrTicketMismatch    = apperr.New(apperr.KindValidation, "ticket does not match order")
	ErrCatalogEmpty      = apperr.New(apperr.KindNotFound, "no products found")
	ErrCategoryNotExist  = apperr.New(apperr.KindValidation, "category not found")
	ErrDuplicateProduct  = apperr.New(apperr.KindValidation, "product already exists")
	ErrInvalidProduct    = apperr.New(apperr.KindValidation, "name is required, price and stock must not be negative")
)

// insufficientStock 回傳帶商品名稱的錯誤, 仍可用 errors.Is 比對 repository.ErrStockNotEnough
func insufficientStock(productName string) error {
	return apperr.Wrap(apperr.KindConflict, repository.ErrStockNotEnough,
		fmt.Sprintf("insufficient stock for product %s", productName))
}
