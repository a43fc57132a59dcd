package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// 注文時点の商品スナップショット
type OrderItemRepository interface {
	Snapshot(ctx context.Context, orderID int64, items []model.OrderItem) error
	ForOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// order_idごとにまとめて返す（一覧のN+1回避）
	ForOrders(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
	DeleteForOrder(ctx context.Context, orderID int64) error
}
