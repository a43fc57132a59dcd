package usecase

import (
	"context"
	"errors"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"
)

type WishlistUsecase struct {
	wishlist repo.WishlistRepository
	products repo.ProductRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist, products: products}
}

type WishlistItemOutput struct {
	Product model.ProductView `json:"product"`
	AddedAt time.Time         `json:"added_at"`
}

// 削除済み商品は一覧から落とす
func (u *WishlistUsecase) Get(ctx context.Context, userID int64) ([]WishlistItemOutput, error) {
	items, err := u.wishlist.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := time.Now()
	out := make([]WishlistItemOutput, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, WishlistItemOutput{Product: p.View(now), AddedAt: it.AddedAt})
	}
	return out, nil
}

// 既に入っていても成功
func (u *WishlistUsecase) Add(ctx context.Context, userID, productID int64) ([]WishlistItemOutput, error) {
	if productID <= 0 {
		return nil, badRequest("Product ID is required")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		return nil, dbError(err)
	}

	if err := u.wishlist.Add(ctx, userID, productID); err != nil {
		return nil, dbError(err)
	}
	return u.Get(ctx, userID)
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID, productID int64) ([]WishlistItemOutput, error) {
	if productID <= 0 {
		return nil, badRequest("Product ID is required")
	}
	err := u.wishlist.Remove(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("Product not found in wishlist")
	}
	if err != nil {
		return nil, dbError(err)
	}
	return u.Get(ctx, userID)
}
