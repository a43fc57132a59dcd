package model

import (
	"encoding/json"
	"time"
)

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionDeleteOrder       AuditAction = "DELETE_ORDER"
	AuditActionDeactivateUser    AuditAction = "DEACTIVATE_USER"
	AuditActionForceLogout       AuditAction = "FORCE_LOGOUT"
)

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 管理者操作の記録。before/afterには変わった項目だけ入れる
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index:idx_audit_resource,priority:2" json:"resource_id"`
	Before       string            `gorm:"column:before_state;type:text" json:"before,omitempty"`
	After        string            `gorm:"column:after_state;type:text" json:"after,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}

// 変更前/変更後のどちらか一方
type Fields map[string]any

// 現在時刻で作る。nilの側は空で保存
func NewAuditLog(actorID int64, action AuditAction, resource AuditResourceType, resourceID int64, before, after Fields) AuditLog {
	return AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		Before:       before.encode(),
		After:        after.encode(),
		CreatedAt:    time.Now(),
	}
}

// キーはソートされる
func (f Fields) encode() string {
	if f == nil {
		return ""
	}
	b, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(b)
}
