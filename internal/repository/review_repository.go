package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

type ReviewRepository interface {
	// 同じユーザーの2件目はErrDuplicate
	Create(ctx context.Context, review *model.Review) error
	Exists(ctx context.Context, productID, userID int64) (bool, error)
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)
	// 平均評価と件数
	Stats(ctx context.Context, productID int64) (float64, int64, error)
}
