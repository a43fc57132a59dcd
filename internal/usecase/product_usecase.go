package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"
)

// 商品詳細のキャッシュ。実装はredis/noop
type ProductCache interface {
	Get(ctx context.Context, id int64) (model.Product, bool)
	Set(ctx context.Context, p model.Product)
	Invalidate(ctx context.Context, id int64)
}

type noopProductCache struct{}

func (noopProductCache) Get(context.Context, int64) (model.Product, bool) { return model.Product{}, false }
func (noopProductCache) Set(context.Context, model.Product)               {}
func (noopProductCache) Invalidate(context.Context, int64)                {}

type ProductUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	reviews  repo.ReviewRepository
	cache    ProductCache
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	reviews repo.ReviewRepository,
	cache ProductCache,
) *ProductUsecase {
	if cache == nil {
		cache = noopProductCache{}
	}
	return &ProductUsecase{tx: tx, products: products, reviews: reviews, cache: cache}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Search   string
	Category string
	SellerID *int64
	MinPrice *int64
	MaxPrice *int64
	SortBy   string
	Order    string
}

type ProductListOutput struct {
	Items      []model.ProductView `json:"items"`
	Pagination Pagination          `json:"pagination"`
}

type ProductInput struct {
	Name               string
	Description        string
	Price              int64
	Currency           string
	Category           string
	Brand              string
	Stock              int64
	Image              string
	Tags               []string
	IsActive           *bool
	DiscountPercentage int64
	DiscountValidFrom  *time.Time
	DiscountValidTo    *time.Time
}

// PUTの入力。nilの項目は今の値のまま
type ProductPatch struct {
	Name               *string
	Description        *string
	Price              *int64
	Currency           *string
	Category           *string
	Brand              *string
	Stock              *int64
	Image              *string
	Tags               []string
	IsActive           *bool
	DiscountPercentage *int64
	DiscountValidFrom  *time.Time
	DiscountValidTo    *time.Time
}

func (pt ProductPatch) mergeInto(in ProductInput) ProductInput {
	if pt.Name != nil {
		in.Name = *pt.Name
	}
	if pt.Description != nil {
		in.Description = *pt.Description
	}
	if pt.Price != nil {
		in.Price = *pt.Price
	}
	if pt.Currency != nil {
		in.Currency = *pt.Currency
	}
	if pt.Category != nil {
		in.Category = *pt.Category
	}
	if pt.Brand != nil {
		in.Brand = *pt.Brand
	}
	if pt.Stock != nil {
		in.Stock = *pt.Stock
	}
	if pt.Image != nil {
		in.Image = *pt.Image
	}
	if pt.Tags != nil {
		in.Tags = pt.Tags
	}
	if pt.IsActive != nil {
		in.IsActive = pt.IsActive
	}
	if pt.DiscountPercentage != nil {
		in.DiscountPercentage = *pt.DiscountPercentage
	}
	if pt.DiscountValidFrom != nil {
		in.DiscountValidFrom = pt.DiscountValidFrom
	}
	if pt.DiscountValidTo != nil {
		in.DiscountValidTo = pt.DiscountValidTo
	}
	return in
}

func inputFromProduct(p model.Product) ProductInput {
	active := p.IsActive
	return ProductInput{
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		Currency:           p.Currency,
		Category:           string(p.Category),
		Brand:              p.Brand,
		Stock:              p.Stock,
		Image:              p.Image,
		Tags:               p.Tags,
		IsActive:           &active,
		DiscountPercentage: p.DiscountPercentage,
		DiscountValidFrom:  p.DiscountValidFrom,
		DiscountValidTo:    p.DiscountValidTo,
	}
}

type ReviewInput struct {
	Rating  int64
	Comment string
}

type ProductDetailOutput struct {
	model.ProductView
	Reviews []model.Review `json:"reviews"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	page, limit, err := normalizePage(in.Page, in.Limit)
	if err != nil {
		return ProductListOutput{}, err
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, badRequest("search too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, badRequest("minPrice must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, badRequest("maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, badRequest("minPrice must be <= maxPrice")
	}
	switch in.SortBy {
	case "", "price", "rating", "name", "createdAt":
	default:
		return ProductListOutput{}, badRequest("invalid sortBy")
	}
	switch strings.ToLower(in.Order) {
	case "", "asc", "desc":
	default:
		return ProductListOutput{}, badRequest("invalid order")
	}
	category := ""
	if in.Category != "" {
		c, ok := model.ParseCategory(in.Category)
		if !ok {
			return ProductListOutput{}, badRequest("invalid category")
		}
		category = string(c)
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(in.Search),
		Category: category,
		SellerID: in.SellerID,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		SortBy:   in.SortBy,
		Order:    in.Order,
	})
	if err != nil {
		return ProductListOutput{}, dbError(err)
	}

	return ProductListOutput{Items: views(items), Pagination: newPagination(page, limit, total)}, nil
}

// 非公開・削除済みは404
func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, badRequest("invalid product id")
	}

	p, ok := u.cache.Get(ctx, productID)
	if !ok {
		var err error
		p, err = u.products.FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return ProductDetailOutput{}, notFound("Product not found")
		}
		if err != nil {
			return ProductDetailOutput{}, dbError(err)
		}
		u.cache.Set(ctx, p)
	}
	if !p.IsActive {
		return ProductDetailOutput{}, notFound("Product not found")
	}

	reviews, err := u.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return ProductDetailOutput{}, dbError(err)
	}
	return ProductDetailOutput{ProductView: p.View(time.Now()), Reviews: reviews}, nil
}

// 出品者か管理者のみ
func (u *ProductUsecase) Create(ctx context.Context, actor Actor, in ProductInput) (model.ProductView, error) {
	if actor.Role != model.RoleSeller && !actor.IsAdmin() {
		return model.ProductView{}, forbidden("Only sellers can create products")
	}

	p := model.Product{SellerID: actor.UserID, IsActive: true}
	if err := applyProductInput(&p, in); err != nil {
		return model.ProductView{}, err
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return model.ProductView{}, dbError(err)
	}
	return created.View(time.Now()), nil
}

// 送られた項目だけ上書きし、結果をまとめて検証する
func (u *ProductUsecase) Update(ctx context.Context, actor Actor, productID int64, patch ProductPatch) (model.ProductView, error) {
	p, err := u.findOwned(ctx, actor, productID)
	if err != nil {
		return model.ProductView{}, err
	}
	if err := applyProductInput(&p, patch.mergeInto(inputFromProduct(p))); err != nil {
		return model.ProductView{}, err
	}

	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.ProductView{}, notFound("Product not found")
		}
		return model.ProductView{}, dbError(err)
	}
	u.cache.Invalidate(ctx, productID)
	return p.View(time.Now()), nil
}

func (u *ProductUsecase) Delete(ctx context.Context, actor Actor, productID int64) error {
	if _, err := u.findOwned(ctx, actor, productID); err != nil {
		return err
	}
	if err := u.products.SoftDelete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product not found")
		}
		return dbError(err)
	}
	u.cache.Invalidate(ctx, productID)
	return nil
}

// 1ユーザー1件。平均評価と件数は同じtxで再計算する
func (u *ProductUsecase) AddReview(ctx context.Context, actor Actor, productID int64, in ReviewInput) (model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, badRequest("Rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > 500 {
		return model.Review{}, badRequest("Comment cannot exceed 500 characters")
	}

	var created model.Review
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
			return notFound("Product not found")
		}
		if err != nil {
			return err
		}

		user, err := r.Users().FindByID(ctx, actor.UserID)
		if err != nil {
			return err
		}

		exists, err := r.Reviews().Exists(ctx, productID, user.ID)
		if err != nil {
			return err
		}
		if exists {
			return badRequest("Product already reviewed")
		}

		created = model.Review{
			ProductID: productID,
			UserID:    user.ID,
			Name:      user.FullName(),
			Rating:    in.Rating,
			Comment:   comment,
			CreatedAt: time.Now(),
		}
		if err := r.Reviews().Create(ctx, &created); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return badRequest("Product already reviewed")
			}
			return err
		}

		avg, n, err := r.Reviews().Stats(ctx, productID)
		if err != nil {
			return err
		}
		return r.Products().UpdateRating(ctx, productID, avg, n)
	})
	if err != nil {
		return model.Review{}, passOrDB(err)
	}

	u.cache.Invalidate(ctx, productID)
	return created, nil
}

func (u *ProductUsecase) ListReviews(ctx context.Context, productID int64) ([]model.Review, error) {
	detail, err := u.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return detail.Reviews, nil
}

// 在庫の現在値を設定し、調整履歴と監査ログを残す
func (u *ProductUsecase) SetStock(ctx context.Context, actor Actor, productID int64, newStock int64, reason string) (model.ProductView, error) {
	if !actor.IsAdmin() {
		return model.ProductView{}, forbidden("admin only")
	}
	if productID <= 0 {
		return model.ProductView{}, badRequest("invalid product id")
	}
	if newStock < 0 {
		return model.ProductView{}, badRequest("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.ProductView{}, badRequest("reason required")
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product not found")
		}
		if err != nil {
			return err
		}

		if err := r.Inventory().Adjust(ctx, model.NewStockSet(productID, actor.UserID, p.Stock, newStock, reason)); err != nil {
			return err
		}
		entry := model.NewAuditLog(actor.UserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			model.Fields{"stock": p.Stock}, model.Fields{"stock": newStock})
		if err := r.AuditLogs().Create(ctx, entry); err != nil {
			return err
		}

		p.Stock = newStock
		updated = p
		return nil
	})
	if err != nil {
		return model.ProductView{}, passOrDB(err)
	}

	u.cache.Invalidate(ctx, productID)
	return updated.View(time.Now()), nil
}

func (u *ProductUsecase) findOwned(ctx context.Context, actor Actor, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, badRequest("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, notFound("Product not found")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	if !actor.Owns(p.SellerID) {
		return model.Product{}, forbidden("Not authorized to modify this product")
	}
	return p, nil
}

func applyProductInput(p *model.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return badRequest("Product name is required")
	}
	if len(name) > 100 {
		return badRequest("Product name cannot exceed 100 characters")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return badRequest("Product description is required")
	}
	if len(desc) > 2000 {
		return badRequest("Description cannot exceed 2000 characters")
	}
	if in.Price < 0 {
		return badRequest("Price cannot be negative")
	}
	if in.Stock < 0 {
		return badRequest("Stock cannot be negative")
	}
	category, ok := model.ParseCategory(in.Category)
	if !ok {
		return badRequest("invalid category")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = model.CurrencyNGN
	}
	if !model.ValidCurrency(currency) {
		return badRequest("invalid currency")
	}
	if in.DiscountPercentage < 0 || in.DiscountPercentage > 100 {
		return badRequest("discount percentage must be between 0 and 100")
	}
	if in.DiscountValidFrom != nil && in.DiscountValidTo != nil && in.DiscountValidTo.Before(*in.DiscountValidFrom) {
		return badRequest("discount end must be after start")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	p.Name = name
	p.Description = desc
	p.Price = in.Price
	p.Currency = currency
	p.Category = category
	p.Brand = strings.TrimSpace(in.Brand)
	p.Stock = in.Stock
	p.Image = strings.TrimSpace(in.Image)
	p.Tags = tags
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.DiscountPercentage = in.DiscountPercentage
	p.DiscountValidFrom = in.DiscountValidFrom
	p.DiscountValidTo = in.DiscountValidTo
	return nil
}

func views(products []model.Product) []model.ProductView {
	now := time.Now()
	out := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, p.View(now))
	}
	return out
}
