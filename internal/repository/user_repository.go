package repository

import (
	"context"
	"time"

	"naijashop/internal/domain/model"
)

type UserListFilter struct {
	Page   int
	Limit  int
	Search string
	Role   string
	// 有効なユーザーのみ
	ActiveOnly bool
}

// 保存・取得を約束
type UserRepository interface {
	// emailが重複していればErrDuplicate
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// プロフィール・ロール・有効フラグなど
	Update(ctx context.Context, user *model.User) error
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	// is_active=false かつ token_version+1
	Deactivate(ctx context.Context, userID int64) error
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	Count(ctx context.Context) (int64, error)
}
