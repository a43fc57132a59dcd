package repository

import (
	"context"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

var _ repo.OrderItemRepository = (*OrderItemGormRepository)(nil)

func (r *OrderItemGormRepository) Snapshot(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.OrderID = orderID
		rows[i] = it
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
		return translate(err)
	}
	copy(items, rows)
	return nil
}

func (r *OrderItemGormRepository) ForOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

func (r *OrderItemGormRepository) ForOrders(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	grouped := make(map[int64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var items []model.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("order_id").Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		grouped[it.OrderID] = append(grouped[it.OrderID], it)
	}
	return grouped, nil
}

func (r *OrderItemGormRepository) DeleteForOrder(ctx context.Context, orderID int64) error {
	return translate(r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error)
}
