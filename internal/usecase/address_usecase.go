package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"naijashop/internal/domain/model"
	"naijashop/internal/repository"
)

type AddressInput struct {
	Street     string
	City       string
	State      string
	Country    string
	PostalCode string
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, unauthorized("unauthorized")
	}
	list, err := u.addresses.ListForUser(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

// 最初の住所はrepository側でデフォルトになる
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, unauthorized("unauthorized")
	}
	shipping, err := normalizeAddress(in)
	if err != nil {
		return model.Address{}, err
	}

	now := time.Now()
	created, err := u.addresses.Create(ctx, model.Address{
		UserID:     userID,
		Street:     shipping.Street,
		City:       shipping.City,
		State:      shipping.State,
		Country:    shipping.Country,
		PostalCode: shipping.PostalCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Address{}, dbError(err)
	}
	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID, addressID int64, in AddressInput) (model.Address, error) {
	a, err := u.owned(ctx, userID, addressID)
	if err != nil {
		return model.Address{}, err
	}
	shipping, err := normalizeAddress(in)
	if err != nil {
		return model.Address{}, err
	}

	a.Street = shipping.Street
	a.City = shipping.City
	a.State = shipping.State
	a.Country = shipping.Country
	a.PostalCode = shipping.PostalCode
	a.UpdatedAt = time.Now()
	if err := u.addresses.Update(ctx, a); err != nil {
		return model.Address{}, dbError(err)
	}
	return a, nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}
	return addressErr(u.addresses.DeleteForUser(ctx, userID, addressID))
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}
	return addressErr(u.addresses.SetDefault(ctx, userID, addressID))
}

// 他人の住所は存在しない扱い
func (u *AddressUsecase) owned(ctx context.Context, userID, addressID int64) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, unauthorized("unauthorized")
	}
	if addressID <= 0 {
		return model.Address{}, badRequest("invalid address id")
	}
	a, err := u.addresses.FindForUser(ctx, userID, addressID)
	if err != nil {
		return model.Address{}, addressErr(err)
	}
	return a, nil
}

func addressErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound("Address not found")
	}
	return dbError(err)
}

// street/city/state必須。countryは省略時Nigeria
func normalizeAddress(in AddressInput) (model.ShippingAddress, error) {
	a := model.ShippingAddress{
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Country:    strings.TrimSpace(in.Country),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
	if a.Country == "" {
		a.Country = "Nigeria"
	}
	if !a.Complete() {
		return model.ShippingAddress{}, badRequest("Complete shipping address is required")
	}
	return a, nil
}
