package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError はusecaseが返す唯一のエラー型。handlerでそのままステータスに変換する。
type HTTPError struct {
	Status  int
	Message string
	// 非本番ではレスポンスのerrorに載せる
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 500。原因は保持しておく
func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
}

func badRequest(msg string) error   { return NewHTTPError(http.StatusBadRequest, msg) }
func unauthorized(msg string) error { return NewHTTPError(http.StatusUnauthorized, msg) }
func forbidden(msg string) error    { return NewHTTPError(http.StatusForbidden, msg) }
func notFound(msg string) error     { return NewHTTPError(http.StatusNotFound, msg) }

// tx内で作ったHTTPErrorはそのまま、それ以外はdb error
func passOrDB(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(err)
}
