package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryBeauty      Category = "beauty"
	CategoryToys        Category = "toys"
	CategoryAutomotive  Category = "automotive"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHome, CategorySports,
	CategoryBeauty, CategoryToys, CategoryAutomotive, CategoryOther,
}

// 小文字にしてから既知のカテゴリか確認
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

const CurrencyNGN = "NGN"

func ValidCurrency(c string) bool {
	switch c {
	case "NGN", "USD", "EUR", "GBP":
		return true
	}
	return false
}

// Priceは整数（ナイラ単位）で保存
type Product struct {
	ID          int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string   `gorm:"type:varchar(100);not null" json:"name"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Price       int64    `gorm:"not null;index:idx_products_category_price,priority:2" json:"price"`
	Currency    string   `gorm:"type:varchar(3);not null;default:'NGN'" json:"currency"`
	Category    Category `gorm:"type:varchar(30);not null;index:idx_products_category_price,priority:1" json:"category"`
	Brand       string   `gorm:"type:varchar(50)" json:"brand"`
	Stock       int64    `gorm:"not null;default:0" json:"stock"`
	Image       string   `gorm:"type:text" json:"image"`
	Tags        []string `gorm:"serializer:json;type:text" json:"tags"`
	SellerID    int64    `gorm:"not null;index" json:"seller_id"`
	IsActive    bool     `gorm:"not null" json:"is_active"`

	Rating     float64 `gorm:"not null;default:0;index" json:"rating"`
	NumReviews int64   `gorm:"not null;default:0" json:"num_reviews"`

	DiscountPercentage int64      `gorm:"not null;default:0" json:"discount_percentage"`
	DiscountValidFrom  *time.Time `json:"discount_valid_from,omitempty"`
	DiscountValidTo    *time.Time `json:"discount_valid_to,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 割引期間内か
func (p Product) DiscountActive(now time.Time) bool {
	if p.DiscountPercentage <= 0 {
		return false
	}
	if p.DiscountValidFrom != nil && now.Before(*p.DiscountValidFrom) {
		return false
	}
	if p.DiscountValidTo != nil && now.After(*p.DiscountValidTo) {
		return false
	}
	return true
}

// 会計時の価格（ナイラ単位で四捨五入）
func (p Product) DiscountedPrice(now time.Time) int64 {
	if !p.DiscountActive(now) {
		return p.Price
	}
	factor := decimal.NewFromInt(100 - p.DiscountPercentage).Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(p.Price).Mul(factor).Round(0).IntPart()
}

// 公開中かつ在庫あり
func (p Product) IsAvailable() bool {
	return p.IsActive && p.Stock > 0
}

// ₦1,250,000 の形式
func FormatNaira(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := decimal.NewFromInt(amount).String()

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-₦" + b.String()
	}
	return "₦" + b.String()
}

// 派生項目つきのJSON
type ProductView struct {
	Product
	DiscountedPrice          int64  `json:"discounted_price"`
	FormattedPrice           string `json:"formatted_price"`
	FormattedDiscountedPrice string `json:"formatted_discounted_price"`
	IsAvailable              bool   `json:"is_available"`
}

func (p Product) View(now time.Time) ProductView {
	dp := p.DiscountedPrice(now)
	return ProductView{
		Product:                  p,
		DiscountedPrice:          dp,
		FormattedPrice:           FormatNaira(p.Price),
		FormattedDiscountedPrice: FormatNaira(dp),
		IsAvailable:              p.IsAvailable(),
	}
}
