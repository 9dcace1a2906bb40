package model

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	CategoryID int64  `gorm:"primaryKey" json:"category_id"`
	Name       string `gorm:"not null;type:varchar(100);unique" json:"name"`
	BaseModel
}

// Stock 只能經由庫存扣減路徑異動, 不可為負
type Product struct {
	ProductID   int64           `gorm:"primaryKey" json:"product_id"`
	Name        string          `gorm:"not null;type:varchar(100);unique" json:"name"`
	Description string          `gorm:"not null;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       int             `gorm:"not null;type:int" json:"stock"`
	CategoryID  int64           `gorm:"not null" json:"category_id"`
	BaseModel
}

// CatalogSection 依分類分組的商品清單
type CatalogSection struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}
