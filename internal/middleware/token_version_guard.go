package middleware

import (
	"errors"
	"net/http"

	"naijashop/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionの一致、アカウントの有効性を確認。
// 通過したらroleはDBの値で上書きする（昇格/降格を即時反映）。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return deny(c, http.StatusUnauthorized, "Token is not valid")
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return deny(c, http.StatusUnauthorized, "Token is not valid")
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return deny(c, http.StatusUnauthorized, "Token is not valid")
			}
			if err != nil {
				c.Logger().Errorj(map[string]interface{}{"msg": "token guard lookup failed", "user_id": userID, "error": err.Error()})
				return deny(c, http.StatusInternalServerError, "Server error")
			}
			if !user.IsActive {
				return deny(c, http.StatusUnauthorized, "Account has been deactivated")
			}

			//token_versionが一致しなければ強制ログアウト扱い
			if user.TokenVersion != tv {
				return deny(c, http.StatusUnauthorized, "Token has been revoked")
			}

			c.Set(CtxUserRoleKey, user.Role)
			return next(c)
		}
	}
}
