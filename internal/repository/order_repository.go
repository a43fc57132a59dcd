package repository

import (
	"context"
	"time"

	"naijashop/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order *model.Order) error
	// deliveredAtがnilなら既存値を変えない
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, deliveredAt *time.Time) error
	UpdatePayment(ctx context.Context, orderID int64, payment model.PaymentInfo) error
	FindByPaymentReference(ctx context.Context, reference string) (model.Order, error)
	Delete(ctx context.Context, orderID int64) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// ダッシュボード集計
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
	// cancelled以外の合計金額
	Revenue(ctx context.Context) (int64, error)
}
