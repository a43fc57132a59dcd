package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"naijashop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // model.Role
	CtxTokenVersionKey = "token_version" // int
)

const tokenHeader = "x-auth-token"

// JWT検証ミドルウェア。Authorization: Bearer と x-auth-token の両方を受け付ける。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := extractToken(c.Request())
			if !ok {
				return deny(c, http.StatusUnauthorized, "No token provided, authorization denied")
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return deny(c, http.StatusUnauthorized, tokenErrorMessage(err))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return deny(c, http.StatusUnauthorized, "Token is not valid")
			}

			userID, err := parseUserID(claims["sub"])
			if err != nil || userID <= 0 {
				return deny(c, http.StatusUnauthorized, "Token is not valid")
			}

			//tvが無い古いトークンは0扱い
			tv := 0
			if raw, exists := claims["tv"]; exists {
				tv, err = parseInt(raw)
				if err != nil || tv < 0 {
					return deny(c, http.StatusUnauthorized, "Token is not valid")
				}
			}

			//roleはTokenVersionGuardでDBの値に置き換える
			role, _ := claims["role"].(string)

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, role)
			c.Set(CtxTokenVersionKey, tv)

			return next(c)
		}
	}
}

func extractToken(r *http.Request) (string, bool) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		t := strings.TrimSpace(parts[1])
		return t, t != ""
	}
	t := strings.TrimSpace(r.Header.Get(tokenHeader))
	return t, t != ""
}

func tokenErrorMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return "Token expired"
	}
	return "Token is not valid"
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Success: false, Message: msg})
}

// subをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}
