package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// カートは (user_id, product_id) ごとに1行
type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一商品は数量を加算（1文のupsert）
	AddQuantity(ctx context.Context, userID, productID, qty int64) error
	// 行が無ければErrNotFound
	SetQuantity(ctx context.Context, userID, productID, qty int64) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	CountByUserID(ctx context.Context, userID int64) (int64, error)
}
