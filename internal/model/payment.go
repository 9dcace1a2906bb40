package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDetails 每個使用者一筆, 第一次結帳寫入後重複使用
type PaymentDetails struct {
	PaymentDetailsID int64     `gorm:"primaryKey" json:"payment_details_id"`
	UserID           int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CardNumber       string    `gorm:"not null;type:varchar(32)" json:"-"`
	CVV              string    `gorm:"column:cvv;not null;type:varchar(8)" json:"-"`
	ExpiryDate       string    `gorm:"not null;type:varchar(10)" json:"expiry_date"`
	HolderName       string    `gorm:"not null;type:varchar(100)" json:"holder_name"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PaymentDetails) TableName() string {
	return "payment_details"
}

// Payment 每次結帳建立一筆, 建立後不再異動
type Payment struct {
	PaymentID        int64           `gorm:"primaryKey" json:"payment_id"`
	UserID           int64           `gorm:"not null;index" json:"user_id"`
	Amount           decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	PaidAt           time.Time       `gorm:"not null;type:date" json:"paid_at"`
	PaymentDetailsID int64           `gorm:"not null" json:"payment_details_id"`
	CreatedAt        time.Time       `gorm:"not null;default:now()" json:"created_at"`
}
