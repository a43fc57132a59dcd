package model

import "time"

// 1ユーザー1商品につき1件
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_reviews_product_user" json:"product_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_reviews_product_user" json:"user_id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Rating    int64     `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:varchar(500)" json:"comment"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
