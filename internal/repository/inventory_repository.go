package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// 在庫の増減は全てここを通す
type InventoryRepository interface {
	// 在庫が足りるときだけ確保する。falseなら在庫不足
	Reserve(ctx context.Context, productID int64, qty int64) (bool, error)
	// キャンセル・削除で戻す（削除済み商品も対象）
	Release(ctx context.Context, productID int64, qty int64) error
	// stockをadj.StockAfterにして履歴を残す
	Adjust(ctx context.Context, adj model.InventoryAdjustment) error
}
