package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/domain/model"
	"naijashop/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID                  int64      `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	FullName            string     `json:"full_name"`
	Email               string     `json:"email"`
	Role                model.Role `json:"role"`
	Phone               string     `json:"phone,omitempty"`
	Address             string     `json:"address,omitempty"`
	City                string     `json:"city,omitempty"`
	State               string     `json:"state,omitempty"`
	Country             string     `json:"country,omitempty"`
	BusinessName        string     `json:"business_name,omitempty"`
	BusinessDescription string     `json:"business_description,omitempty"`
	IsActive            bool       `json:"is_active"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`

	// プロフィール取得時のみ
	CartItemCount *int64 `json:"cart_item_count,omitempty"`
	WishlistCount *int64 `json:"wishlist_count,omitempty"`
}

type RegisterInput struct {
	FirstName           string
	LastName            string
	Email               string
	Password            string
	Role                string
	Phone               string
	BusinessName        string
	BusinessDescription string
}

type AuthResult struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	cart      repository.CartRepository
	wishlist  repository.WishlistRepository
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	cart repository.CartRepository,
	wishlist repository.WishlistRepository,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		cart:      cart,
		wishlist:  wishlist,
		validator: validator,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = model.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Role == "" {
		in.Role = string(model.RoleCustomer)
	}

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost())
	if err != nil {
		return nil, &HTTPError{Status: http.StatusInternalServerError, Message: "Server error during registration", Err: err}
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(pwHash),
		Role:         model.Role(in.Role),
		Phone:        strings.TrimSpace(in.Phone),
		Country:      "Nigeria",
		TokenVersion: 0,
		IsActive:     true,
	}
	if user.Role == model.RoleSeller {
		user.BusinessName = strings.TrimSpace(in.BusinessName)
		user.BusinessDescription = strings.TrimSpace(in.BusinessDescription)
	}

	//validatorの確認後に同時登録された場合もユニーク制約で400にする
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, badRequest("User already exists with this email")
		}
		return nil, dbError(err)
	}

	token, err := u.issueToken(user)
	if err != nil {
		return nil, &HTTPError{Status: http.StatusInternalServerError, Message: "Server error during registration", Err: err}
	}

	return &AuthResult{User: toUserDTO(user), Token: token}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = model.NormalizeEmail(email)
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, dbError(err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, unauthorized("Account has been deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, unauthorized("Invalid credentials")
	}

	//last_login更新
	now := time.Now()
	if err := u.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, dbError(err)
	}
	user.LastLoginAt = &now

	token, err := u.issueToken(user)
	if err != nil {
		return nil, &HTTPError{Status: http.StatusInternalServerError, Message: "Server error during login", Err: err}
	}

	return &AuthResult{User: toUserDTO(user), Token: token}, nil
}

// カート・ウィッシュリスト件数つきの自分の情報
func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, unauthorized("unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, dbError(err)
	}

	cartCount, err := u.cart.CountByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	wishCount, err := u.wishlist.CountByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	dto := toUserDTO(user)
	dto.CartItemCount = &cartCount
	dto.WishlistCount = &wishCount
	return &dto, nil
}

// jwt発行
func (u *AuthUsecase) issueToken(user *model.User) (string, error) {
	return IssueToken(u.cfg.JWTSecret, u.cfg.TokenTTL, user, time.Now())
}

func (u *AuthUsecase) bcryptCost() int {
	if u.cfg.BcryptCost < bcrypt.MinCost || u.cfg.BcryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return u.cfg.BcryptCost
}

// sub・role・トークンバージョンを入れてHS256で署名
func IssueToken(secret string, ttl time.Duration, user *model.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		FullName:            u.FullName(),
		Email:               u.Email,
		Role:                u.Role,
		Phone:               u.Phone,
		Address:             u.Address,
		City:                u.City,
		State:               u.State,
		Country:             u.Country,
		BusinessName:        u.BusinessName,
		BusinessDescription: u.BusinessDescription,
		IsActive:            u.IsActive,
		LastLoginAt:         u.LastLoginAt,
		CreatedAt:           u.CreatedAt,
	}
}
