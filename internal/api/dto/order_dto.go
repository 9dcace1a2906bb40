package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItemDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderDTO ticket 為空字串代表憑證還沒產生
type OrderDTO struct {
	OrderID     string         `json:"order_id"`
	UserID      int64          `json:"user_id"`
	OrderDate   time.Time      `json:"order_date"`
	Status      string         `json:"status"`
	PaymentID   int64          `json:"payment_id"`
	Ticket      string         `json:"ticket"`
	TicketReady bool           `json:"ticket_ready"`
	Items       []OrderItemDTO `json:"items"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
}

type ConfirmPickupDTO struct {
	Token string `json:"token"`
}
