package repository

import (
	"context"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

var _ repo.OutboxRepository = (*OutboxGormRepository)(nil)

func (r *OutboxGormRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *OutboxGormRepository) ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	events := []model.OutboxEvent{}
	if err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return []model.OutboxEvent{}, err
	}
	return events, nil
}

func (r *OutboxGormRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).Updates(map[string]any{
		"published_at": at,
		"attempts":     gorm.Expr("attempts + ?", 1),
		"last_error":   "",
	}))
}

func (r *OutboxGormRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return affected(r.db.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).Updates(map[string]any{
		"attempts":   gorm.Expr("attempts + ?", 1),
		"last_error": reason,
	}))
}
