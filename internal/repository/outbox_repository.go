package repository

import (
	"context"
	"time"

	"naijashop/internal/domain/model"
)

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	// 未送信を古い順に
	ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}
