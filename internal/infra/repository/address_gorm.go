package repository

import (
	"context"
	"errors"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func (r *addressGormRepository) forUser(db *gorm.DB, userID int64) *gorm.DB {
	return db.Model(&model.Address{}).Where("user_id = ?", userID)
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := r.forUser(tx, address.UserID).Count(&n).Error; err != nil {
			return err
		}
		address.IsDefault = n == 0
		return tx.Create(&address).Error
	})
	if err != nil {
		return model.Address{}, translate(err)
	}
	return address, nil
}

// デフォルトが先頭
func (r *addressGormRepository) ListForUser(ctx context.Context, userID int64) ([]model.Address, error) {
	list := []model.Address{}
	err := r.forUser(r.db.WithContext(ctx), userID).
		Order("is_default DESC").
		Order("id").
		Find(&list).Error
	return list, err
}

func (r *addressGormRepository) FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error) {
	var a model.Address
	err := r.forUser(r.db.WithContext(ctx), userID).Where("id = ?", addressID).Take(&a).Error
	return a, translate(err)
}

func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	return affected(r.forUser(r.db.WithContext(ctx), address.UserID).
		Where("id = ?", address.ID).
		Updates(map[string]any{
			"street":      address.Street,
			"city":        address.City,
			"state":       address.State,
			"country":     address.Country,
			"postal_code": address.PostalCode,
			"updated_at":  address.UpdatedAt,
		}))
}

func (r *addressGormRepository) DeleteForUser(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Address
		if err := r.forUser(tx, userID).Where("id = ?", addressID).Take(&a).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}

		var next model.Address
		err := r.forUser(tx, userID).Order("id").Take(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// 1文で対象だけtrue、残りfalse
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Address
		if err := r.forUser(tx, userID).Where("id = ?", addressID).Take(&a).Error; err != nil {
			return translate(err)
		}
		return r.forUser(tx, userID).Update("is_default", gorm.Expr("id = ?", addressID)).Error
	})
}
