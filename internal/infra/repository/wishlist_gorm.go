package repository

import (
	"context"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

var _ repo.WishlistRepository = (*WishlistGormRepository)(nil)

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	items := []model.WishlistItem{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error; err != nil {
		return []model.WishlistItem{}, err
	}
	return items, nil
}

func (r *WishlistGormRepository) Add(ctx context.Context, userID, productID int64) error {
	item := model.WishlistItem{UserID: userID, ProductID: productID, AddedAt: time.Now()}
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error)
}

func (r *WishlistGormRepository) Remove(ctx context.Context, userID, productID int64) error {
	return affected(r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{}))
}

func (r *WishlistGormRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
