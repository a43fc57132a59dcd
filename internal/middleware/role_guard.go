package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"naijashop/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストに含まれるか確認します。
func RoleGuard(roles ...model.Role) echo.MiddlewareFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return roleGuard(func(role model.Role) string {
		return fmt.Sprintf("User role %s is not authorized to access this route (requires %s)", role, strings.Join(names, " or "))
	}, roles...)
}

// 管理者のみ
func AdminOnly() echo.MiddlewareFunc {
	return roleGuard(func(model.Role) string { return "Admin access required" }, model.RoleAdmin)
}

func roleGuard(forbiddenMsg func(model.Role) string, roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFrom(c)
			if role == "" {
				return deny(c, http.StatusUnauthorized, "Authentication required")
			}
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return deny(c, http.StatusForbidden, forbiddenMsg(role))
		}
	}
}

// AuthJWTはstring、TokenVersionGuardはmodel.Roleを入れる
func RoleFrom(c echo.Context) model.Role {
	switch v := c.Get(CtxUserRoleKey).(type) {
	case model.Role:
		return v
	case string:
		return model.Role(v)
	}
	return ""
}

// 認証済みユーザーID（未認証なら0）
func UserIDFrom(c echo.Context) int64 {
	id, _ := c.Get(CtxUserIDKey).(int64)
	return id
}
