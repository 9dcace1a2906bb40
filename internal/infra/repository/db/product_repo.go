package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (q *Queries) GetProductByID(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	err := q.db.WithContext(ctx).Where("product_id = ?", productID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (q *Queries) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	err := q.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (q *Queries) GetProductStock(ctx context.Context, productID int64) (int, error) {
	product, err := q.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// DeductProductStock 單一條件式 UPDATE, 只鎖該商品行
// 沒有更新到任何一行時再查一次, 區分商品不存在與庫存不足
func (q *Queries) DeductProductStock(ctx context.Context, productID int64, quantity int) (int, error) {
	var product model.Product
	res := q.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("product_id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := q.GetProductByID(ctx, productID); err != nil {
			return 0, err
		}
		return 0, repository.ErrStockNotEnough
	}
	return product.Stock, nil
}

func (q *Queries) CreateProduct(ctx context.Context, product *model.Product) error {
	err := q.db.WithContext(ctx).Create(product).Error
	if isUniqueViolation(err) {
		return repository.ErrDuplicateProduct
	}
	return err
}

func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := q.db.WithContext(ctx).Order("category_id").Find(&categories).Error
	return categories, err
}

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := q.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (q *Queries) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	var products []model.Product
	err := q.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("product_id").Find(&products).Error
	return products, err
}

// CreateCategory 初始化資料使用
func (q *Queries) CreateCategory(ctx context.Context, category *model.Category) error {
	return q.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(category).Error
}
