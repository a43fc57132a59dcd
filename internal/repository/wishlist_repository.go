package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	// 既にあれば何もしない
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	CountByUserID(ctx context.Context, userID int64) (int64, error)
}
