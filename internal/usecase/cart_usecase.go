package usecase

import (
	"context"
	"errors"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cart     repo.CartRepository
	products repo.ProductRepository
}

func NewCartUsecase(cart repo.CartRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{cart: cart, products: products}
}

// price は現在の販売価格（割引後）
type CartItemOutput struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	Subtotal  int64     `json:"subtotal"`
	Available bool      `json:"available"`
	AddedAt   time.Time `json:"added_at"`
}

type CartOutput struct {
	Items []CartItemOutput `json:"items"`
	Count int64            `json:"count"`
	Total int64            `json:"total"`
}

type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type MergeLineResult struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Merged    bool   `json:"merged"`
	Error     string `json:"error,omitempty"`
}

type MergeOutput struct {
	Results []MergeLineResult `json:"results"`
	Cart    CartOutput        `json:"cart"`
}

func (u *CartUsecase) Get(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, unauthorized("unauthorized")
	}
	return u.build(ctx, userID)
}

// 同一商品は数量加算
func (u *CartUsecase) Add(ctx context.Context, userID int64, line CartLine) (CartOutput, error) {
	if err := u.add(ctx, userID, line); err != nil {
		return CartOutput{}, err
	}
	return u.build(ctx, userID)
}

// 数量0は削除
func (u *CartUsecase) Update(ctx context.Context, userID int64, line CartLine) (CartOutput, error) {
	if line.ProductID <= 0 {
		return CartOutput{}, badRequest("Valid product ID and quantity are required")
	}
	if line.Quantity < 0 {
		return CartOutput{}, badRequest("Valid product ID and quantity are required")
	}

	var err error
	if line.Quantity == 0 {
		err = u.cart.Remove(ctx, userID, line.ProductID)
	} else {
		err = u.cart.SetQuantity(ctx, userID, line.ProductID, line.Quantity)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, notFound("Product not found in cart")
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return u.build(ctx, userID)
}

func (u *CartUsecase) Remove(ctx context.Context, userID, productID int64) (CartOutput, error) {
	if productID <= 0 {
		return CartOutput{}, badRequest("Product ID is required")
	}
	err := u.cart.Remove(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, notFound("Product not found in cart")
	}
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	return u.build(ctx, userID)
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if err := u.cart.Clear(ctx, userID); err != nil {
		return dbError(err)
	}
	return nil
}

// ゲストカートを1行ずつ取り込む。失敗した行は結果に残す
func (u *CartUsecase) Merge(ctx context.Context, userID int64, lines []CartLine) (MergeOutput, error) {
	results := make([]MergeLineResult, 0, len(lines))
	for _, line := range lines {
		res := MergeLineResult{ProductID: line.ProductID, Quantity: line.Quantity, Merged: true}
		if err := u.add(ctx, userID, line); err != nil {
			he, ok := AsHTTPError(err)
			if !ok || he.Status >= 500 {
				return MergeOutput{}, err
			}
			res.Merged = false
			res.Error = he.Message
		}
		results = append(results, res)
	}

	cart, err := u.build(ctx, userID)
	if err != nil {
		return MergeOutput{}, err
	}
	return MergeOutput{Results: results, Cart: cart}, nil
}

func (u *CartUsecase) add(ctx context.Context, userID int64, line CartLine) error {
	if userID <= 0 {
		return unauthorized("unauthorized")
	}
	if line.ProductID <= 0 {
		return badRequest("Product ID is required")
	}
	if line.Quantity < 1 {
		return badRequest("Quantity must be at least 1")
	}

	p, err := u.products.FindByID(ctx, line.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return notFound("Product not found")
	}
	if err != nil {
		return dbError(err)
	}

	if err := u.cart.AddQuantity(ctx, userID, line.ProductID, line.Quantity); err != nil {
		return dbError(err)
	}
	return nil
}

// 商品が消えた行は available=false で返し合計から除く
func (u *CartUsecase) build(ctx context.Context, userID int64) (CartOutput, error) {
	items, err := u.cart.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, dbError(err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, dbError(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := time.Now()
	out := CartOutput{Items: make([]CartItemOutput, 0, len(items))}
	for _, it := range items {
		line := CartItemOutput{ProductID: it.ProductID, Quantity: it.Quantity, AddedAt: it.AddedAt}
		if p, ok := byID[it.ProductID]; ok && p.IsActive {
			line.Name = p.Name
			line.Image = p.Image
			line.Price = p.DiscountedPrice(now)
			line.Subtotal = line.Price * it.Quantity
			line.Available = true
			out.Total += line.Subtotal
		}
		out.Count += it.Quantity
		out.Items = append(out.Items, line)
	}
	return out, nil
}
