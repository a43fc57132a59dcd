package repository

import (
	"context"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

var _ repo.InventoryRepository = (*InventoryGormRepository)(nil)

func (r *InventoryGormRepository) products(ctx context.Context, productID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID)
}

// 条件付きUPDATE 1文なので同時注文でもマイナスにならない
func (r *InventoryGormRepository) Reserve(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.products(ctx, productID).
		Where("stock >= ?", qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *InventoryGormRepository) Release(ctx context.Context, productID int64, qty int64) error {
	return affected(r.products(ctx, productID).
		Unscoped().
		Update("stock", gorm.Expr("stock + ?", qty)))
}

func (r *InventoryGormRepository) Adjust(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := affected(r.products(ctx, adj.ProductID).Update("stock", adj.StockAfter)); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(&adj).Error)
}
