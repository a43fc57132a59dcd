package repository

import (
	"context"
	"encoding/json"
	"strings"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

var _ repo.ProductRepository = (*ProductGormRepository)(nil)

var productSortColumns = map[string]string{
	"price":     "price",
	"rating":    "rating",
	"name":      "name",
	"createdAt": "created_at",
}

// 公開商品のみを、検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）かつ、削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	// name / description / tags を大文字小文字無視で部分一致
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.SellerID != nil {
		tx = tx.Where("seller_id = ?", *q.SellerID)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	col, ok := productSortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "desc"
	if strings.EqualFold(q.Order, "asc") {
		dir = "asc"
	}
	tx = tx.Order(col + " " + dir).Order("id " + dir)

	products := []model.Product{}
	if err := tx.Offset(pageOffset(q.Page, q.Limit)).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// 削除済みは見えない
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 編集可能な項目をゼロ値も含めて更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":                p.Name,
		"description":         p.Description,
		"price":               p.Price,
		"currency":            p.Currency,
		"category":            p.Category,
		"brand":               p.Brand,
		"stock":               p.Stock,
		"image":               p.Image,
		"tags":                tagsJSON(p.Tags),
		"is_active":           p.IsActive,
		"discount_percentage": p.DiscountPercentage,
		"discount_valid_from": p.DiscountValidFrom,
		"discount_valid_to":   p.DiscountValidTo,
	}))
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}

func (r *ProductGormRepository) UpdateRating(ctx context.Context, id int64, rating float64, numReviews int64) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]any{
		"rating":      rating,
		"num_reviews": numReviews,
	}))
}

func (r *ProductGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *ProductGormRepository) CountLowStock(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Count(&n).Error
	return n, err
}

// map指定のUpdatesではserializerが効かないのでJSON文字列にする
func tagsJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}
