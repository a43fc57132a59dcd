package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// Cancellable: shipped/delivered/cancelled からはキャンセル不可
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return m, true
	case "":
		return PaymentMethodCard, true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type ShippingAddress struct {
	Street     string `gorm:"type:varchar(255);not null" json:"street"`
	City       string `gorm:"type:varchar(100);not null" json:"city"`
	State      string `gorm:"type:varchar(100);not null" json:"state"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
}

// street・city・stateが揃っているか
func (a ShippingAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != ""
}

type PaymentInfo struct {
	Method        PaymentMethod `gorm:"type:varchar(30);not null" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	Reference     string        `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	TransactionID string        `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
}

type Order struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID              int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1" json:"user_id"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount         int64           `gorm:"not null" json:"total_amount"`
	Shipping            ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Payment             PaymentInfo     `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`
	EstimatedDeliveryAt *time.Time      `json:"estimated_delivery_at,omitempty"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
	IdempotencyKey      *string         `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idempotency,priority:2" json:"-"`
	CreatedAt           time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}
