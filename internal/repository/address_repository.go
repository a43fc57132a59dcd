package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// 保存済み配送先。取得・変更は必ずユーザー単位で絞る
type AddressRepository interface {
	// ユーザー最初の住所はデフォルトになる
	Create(ctx context.Context, address model.Address) (model.Address, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Address, error)
	// 他人の住所はErrNotFound
	FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	// デフォルトを消したら一番古い住所を繰り上げる
	DeleteForUser(ctx context.Context, userID, addressID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) error
}
