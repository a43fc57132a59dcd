package handler

import (
	"errors"
	"net/http"
	"strconv"

	"naijashop/internal/config"
	"naijashop/internal/middleware"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"
	"naijashop/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// 全APIの共通レスポンス
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func success(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: msg, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: false, Message: msg})
}

// usecaseのHTTPErrorをそのままステータスへ。
// 原因(error)はecho.Debug（=本番以外）のときだけ返す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	status := http.StatusInternalServerError
	msg := "Server error"
	var cause error = err
	if he, ok := usecase.AsHTTPError(err); ok {
		status = he.Status
		msg = he.Message
		cause = he.Err
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Errorj(log.JSON{
			"msg":        msg,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"path":       c.Path(),
			"error":      errString(err),
		})
	}

	body := Envelope{Success: false, Message: msg}
	if c.Echo().Debug && cause != nil {
		body.Error = cause.Error()
	}
	return c.JSON(status, body)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ErrorHandler はルート未定義やbindエラーなどecho由来のエラーを封筒形式にする
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code == http.StatusNotFound {
			msg = "Route not found"
		}
		_ = fail(c, he.Code, msg)
		return
	}
	_ = writeError(c, err)
}

// bind + validate。失敗時は400を書いてfalse
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, fail(c, http.StatusBadRequest, "invalid body")
	}
	if c.Echo().Validator == nil {
		return true, nil
	}
	if err := c.Validate(req); err != nil {
		return false, fail(c, http.StatusBadRequest, validator.Message(err))
	}
	return true, nil
}

// AuthJWT→TokenVersionGuard の順で通す
func requireAuth(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
}

func with(base []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id := middleware.UserIDFrom(c)
	return id, id > 0
}

func actorFrom(c echo.Context) usecase.Actor {
	return usecase.Actor{UserID: middleware.UserIDFrom(c), Role: middleware.RoleFrom(c)}
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 空なら既定値
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &x, nil
}
