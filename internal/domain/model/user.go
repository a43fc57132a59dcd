package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// 既知のロールか
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName           string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName            string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"column:password_hash;not null" json:"-"`
	Role                Role       `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	Phone               string     `gorm:"type:varchar(30)" json:"phone"`
	Address             string     `gorm:"type:varchar(255)" json:"address"`
	City                string     `gorm:"type:varchar(100)" json:"city"`
	State               string     `gorm:"type:varchar(100)" json:"state"`
	Country             string     `gorm:"type:varchar(100);not null;default:'Nigeria'" json:"country"`
	BusinessName        string     `gorm:"type:varchar(255)" json:"business_name,omitempty"`
	BusinessDescription string     `gorm:"type:text" json:"business_description,omitempty"`
	TokenVersion        int        `gorm:"not null;default:0" json:"-"`
	IsActive            bool       `gorm:"not null" json:"is_active"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// 姓名をつなげる
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// 保存時と同じく小文字化＋trim
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
