package dto

import "github.com/shopspring/decimal"

type ProductDTO struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type CatalogSectionDTO struct {
	CategoryID int64        `json:"category_id"`
	Category   string       `json:"category"`
	Products   []ProductDTO `json:"products"`
}

type CreateProductDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}
