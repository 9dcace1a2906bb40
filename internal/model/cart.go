package model

import "github.com/shopspring/decimal"

// CartItem 購物車的一行, (UserID, ProductID) 唯一
// 不存在獨立的購物車紀錄, 第一筆加入時隱含建立
type CartItem struct {
	UserID    int64    `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ProductID int64    `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
	BaseModel
}

// LineAmount 以目前商品價格計算, Product 需已載入
func (c CartItem) LineAmount() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
