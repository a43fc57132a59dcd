package model

import "time"

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderCancelled     = "order.cancelled"
	TopicPaymentVerified    = "payment.verified"
)

// 状態変更と同じtxで書き、あとでrelayが送る
type OutboxEvent struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_id"`
	Topic       string     `gorm:"type:varchar(100);not null;index" json:"topic"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}

// AutoMigrate対象の全テーブル
func AllModels() []any {
	return []any{
		&User{},
		&Address{},
		&Product{},
		&Review{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&AuditLog{},
		&InventoryAdjustment{},
		&OutboxEvent{},
	}
}
