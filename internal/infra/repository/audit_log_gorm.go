package repository

import (
	"context"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.db.NowFunc()
	}
	return translate(r.db.WithContext(ctx).Create(&entry).Error)
}
