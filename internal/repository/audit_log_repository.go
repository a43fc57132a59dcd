package repository

import (
	"context"

	"naijashop/internal/domain/model"
)

// 監査ログは追記のみ。更新する操作と同じtxで書く
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
}
