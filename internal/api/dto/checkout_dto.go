package dto

import "github.com/shopspring/decimal"

// CheckoutRequestDTO 使用者已有付款資料時可以全部留空
type CheckoutRequestDTO struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	ExpiryDate string `json:"expiry_date"`
	HolderName string `json:"holder_name"`
}

type ReceiptDTO struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Total   decimal.Decimal `json:"total"`
}
