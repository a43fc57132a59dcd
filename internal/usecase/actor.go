package usecase

import "naijashop/internal/domain/model"

// Actor はJWTから取り出した呼び出し元
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// 所有者本人か管理者
func (a Actor) Owns(ownerID int64) bool {
	return a.IsAdmin() || (a.UserID > 0 && a.UserID == ownerID)
}
