package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
	SellerID *int64
	MinPrice *int64
	MaxPrice *int64
	SortBy   string // price | rating | name | createdAt
	Order    string // asc | desc
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 公開（is_active=true）のみ
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	UpdateRating(ctx context.Context, id int64, rating float64, numReviews int64) error

	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int64) (int64, error)
}
