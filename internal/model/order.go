package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "pending"                        // 待取貨, 結帳唯一會寫入的狀態
	OrderStatusReadyProofMissing OrderStatus = "ready_for_pickup_proof_missing" // 已備妥但缺取貨憑證
	OrderStatusFulfilled         OrderStatus = "fulfilled"                      // 已取貨
	OrderStatusCancelled         OrderStatus = "cancelled"                      // 已取消
)

// 狀態轉換由外部流程(取貨掃描)驅動, 這裡只定義合法路徑
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:           {OrderStatusFulfilled, OrderStatusCancelled},
	OrderStatusReadyProofMissing: {OrderStatusFulfilled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusReadyProofMissing, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	OrderID   string      `gorm:"primaryKey;type:varchar(36)" json:"order_id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	OrderDate time.Time   `gorm:"not null" json:"order_date"`
	Status    OrderStatus `gorm:"not null;type:varchar(40);default:pending" json:"status"`
	PaymentID int64       `gorm:"not null" json:"payment_id"`
	// Ticket 取貨 QR 憑證 (data url), 空字串代表尚未產生
	Ticket string      `gorm:"not null;type:text;default:''" json:"ticket"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	BaseModel
}

func (o *Order) TicketReady() bool {
	return o.Ticket != ""
}

// OrderItem 下單當下的快照, 不隨商品後續異動
type OrderItem struct {
	OrderID   string   `gorm:"primaryKey;type:varchar(36)" json:"-"`
	ProductID int64    `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
}

// OrderReceipt 結帳成功立即回傳, 不等待取貨憑證
type OrderReceipt struct {
	OrderID string          `json:"order_id"`
	Status  OrderStatus     `json:"status"`
	Total   decimal.Decimal `json:"total"`
}
