package dto

import "github.com/shopspring/decimal"

type CartItemDTO struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type CartDTO struct {
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartLineDTO 加入或調整數量後的單行結果, Removed 代表數量歸零已刪除
type CartLineDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Removed   bool  `json:"removed,omitempty"`
}
