package validator

import (
	"context"
	"errors"
	"net/http"

	"naijashop/internal/domain/model"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/go-playground/validator/v10"
)

const minPasswordLen = 6

type authValidator struct {
	users repository.UserRepository
	v     *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users, v: validator.New()}
}

// サインアップの入力を検証
func (a *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	// 必須チェック
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return invalid("Please provide all required fields")
	}
	if a.v.Var(in.Email, "email") != nil {
		return invalid("Invalid email format")
	}
	if len(in.Password) < minPasswordLen {
		return invalid("Password must be at least 6 characters")
	}
	if len(in.FirstName) > 50 || len(in.LastName) > 50 {
		return invalid("Name cannot exceed 50 characters")
	}

	// adminは自己登録できない
	switch model.Role(in.Role) {
	case model.RoleCustomer, model.RoleSeller:
	default:
		return invalid("invalid role")
	}

	// email重複チェック（DBが必要）
	_, err := a.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return invalid("User already exists with this email")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
	}
	return nil
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return invalid("Please provide email and password")
	}
	if a.v.Var(email, "email") != nil {
		return invalid("Invalid email format")
	}
	return nil
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}
