package model

import "time"

// 購入時点のスナップショット
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	UnitPrice int64     `gorm:"not null" json:"price"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Thumbnail string    `gorm:"type:text" json:"thumbnail,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
