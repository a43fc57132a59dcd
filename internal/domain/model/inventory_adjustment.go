package model

import "time"

// 管理者による在庫セットの履歴
type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ActorUserID int64     `gorm:"not null;index" json:"actor_user_id"`
	StockBefore int64     `gorm:"not null" json:"stock_before"`
	StockAfter  int64     `gorm:"not null" json:"stock_after"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 在庫がbeforeからafterへ変わった記録
func NewStockSet(productID, actorID, before, after int64, reason string) InventoryAdjustment {
	return InventoryAdjustment{
		ProductID:   productID,
		ActorUserID: actorID,
		StockBefore: before,
		StockAfter:  after,
		Delta:       after - before,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}
