package repository

import (
	"context"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

var _ repo.ReviewRepository = (*ReviewGormRepository)(nil)

func (r *ReviewGormRepository) Create(ctx context.Context, review *model.Review) error {
	return translate(r.db.WithContext(ctx).Create(review).Error)
}

func (r *ReviewGormRepository) Exists(ctx context.Context, productID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	reviews := []model.Review{}
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id desc").Find(&reviews).Error; err != nil {
		return []model.Review{}, err
	}
	return reviews, nil
}

func (r *ReviewGormRepository) Stats(ctx context.Context, productID int64) (float64, int64, error) {
	var row struct {
		Avg float64
		N   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS n").
		Where("product_id = ?", productID).
		Scan(&row).Error
	return row.Avg, row.N, err
}
