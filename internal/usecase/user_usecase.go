package usecase

import (
	"context"
	"errors"
	"strings"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	tx         repo.TransactionManager
	users      repo.UserRepository
	bcryptCost int
}

func NewUserUsecase(tx repo.TransactionManager, users repo.UserRepository, bcryptCost int) *UserUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserUsecase{tx: tx, users: users, bcryptCost: bcryptCost}
}

// 空文字の項目は変更しない
type ProfileUpdateInput struct {
	FirstName           string
	LastName            string
	Email               string
	Password            string
	Phone               string
	Address             string
	City                string
	State               string
	Country             string
	BusinessName        string
	BusinessDescription string
}

// 管理者のみ変更可能な項目
type AdminUserUpdateInput struct {
	ProfileUpdateInput
	Role     string
	IsActive *bool
}

type UserListOutput struct {
	Items      []UserDTO  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdateInput) (UserDTO, error) {
	user, err := u.load(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if err := u.applyProfile(ctx, user, in); err != nil {
		return UserDTO{}, err
	}
	if err := u.save(ctx, user); err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (u *UserUsecase) List(ctx context.Context, page, limit int, role, search string) (UserListOutput, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return UserListOutput{}, err
	}
	if role != "" && !model.ValidRole(role) {
		return UserListOutput{}, badRequest("invalid role")
	}

	users, total, err := u.users.List(ctx, repo.UserListFilter{Page: page, Limit: limit, Role: role, Search: search})
	if err != nil {
		return UserListOutput{}, dbError(err)
	}
	return UserListOutput{Items: toUserDTOs(users), Pagination: newPagination(page, limit, total)}, nil
}

// 公開の出品者一覧（有効なもののみ）
func (u *UserUsecase) ListSellers(ctx context.Context, page, limit int) (UserListOutput, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return UserListOutput{}, err
	}

	sellers, total, err := u.users.List(ctx, repo.UserListFilter{
		Page:       page,
		Limit:      limit,
		Role:       string(model.RoleSeller),
		ActiveOnly: true,
	})
	if err != nil {
		return UserListOutput{}, dbError(err)
	}

	items := toUserDTOs(sellers)
	for i := range items {
		// 公開用なので連絡先は出さない
		items[i].Email = ""
		items[i].Phone = ""
		items[i].Address = ""
		items[i].LastLoginAt = nil
	}
	return UserListOutput{Items: items, Pagination: newPagination(page, limit, total)}, nil
}

func (u *UserUsecase) Get(ctx context.Context, actor Actor, id int64) (UserDTO, error) {
	if !actor.Owns(id) {
		return UserDTO{}, forbidden("Access denied")
	}
	user, err := u.load(ctx, id)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (u *UserUsecase) Update(ctx context.Context, actor Actor, id int64, in AdminUserUpdateInput) (UserDTO, error) {
	if !actor.Owns(id) {
		return UserDTO{}, forbidden("Access denied")
	}
	if !actor.IsAdmin() && (in.Role != "" || in.IsActive != nil) {
		return UserDTO{}, forbidden("Access denied. Admin only.")
	}

	user, err := u.load(ctx, id)
	if err != nil {
		return UserDTO{}, err
	}
	if err := u.applyProfile(ctx, user, in.ProfileUpdateInput); err != nil {
		return UserDTO{}, err
	}
	if in.Role != "" {
		if !model.ValidRole(in.Role) {
			return UserDTO{}, badRequest("invalid role")
		}
		user.Role = model.Role(in.Role)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := u.save(ctx, user); err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

// 物理削除はせず無効化＋トークン失効
func (u *UserUsecase) Deactivate(ctx context.Context, actor Actor, id int64) error {
	if actor.UserID == id {
		return badRequest("Cannot delete your own account")
	}

	return passOrDB(u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Users().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("User not found")
		}
		if err != nil {
			return err
		}
		if err := r.Users().Deactivate(ctx, id); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.NewAuditLog(actor.UserID, model.AuditActionDeactivateUser, model.AuditResourceUser, id,
			model.Fields{"is_active": before.IsActive}, model.Fields{"is_active": false}))
	}))
}

// token_versionを進めて既存トークンを無効にする
func (u *UserUsecase) ForceLogout(ctx context.Context, actor Actor, id int64) (ForceLogoutOutput, error) {
	var out ForceLogoutOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().IncrementTokenVersion(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("User not found")
			}
			return err
		}
		user, err := r.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		out = ForceLogoutOutput{UserID: user.ID, NewTokenVersion: user.TokenVersion}

		return r.AuditLogs().Create(ctx, model.NewAuditLog(actor.UserID, model.AuditActionForceLogout, model.AuditResourceUser, id,
			nil, model.Fields{"token_version": user.TokenVersion}))
	})
	if err != nil {
		return ForceLogoutOutput{}, passOrDB(err)
	}
	return out, nil
}

func (u *UserUsecase) load(ctx context.Context, id int64) (*model.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, dbError(err)
	}
	return user, nil
}

func (u *UserUsecase) save(ctx context.Context, user *model.User) error {
	if err := u.users.Update(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return badRequest("Email already exists")
		}
		return dbError(err)
	}
	return nil
}

func (u *UserUsecase) applyProfile(ctx context.Context, user *model.User, in ProfileUpdateInput) error {
	if email := model.NormalizeEmail(in.Email); email != "" && email != user.Email {
		existing, err := u.users.FindByEmail(ctx, email)
		if err == nil && existing != nil {
			return badRequest("Email already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}
		user.Email = email
	}

	setIf(&user.FirstName, in.FirstName)
	setIf(&user.LastName, in.LastName)
	setIf(&user.Phone, in.Phone)
	setIf(&user.Address, in.Address)
	setIf(&user.City, in.City)
	setIf(&user.State, in.State)
	setIf(&user.Country, in.Country)

	// 事業情報は出品者と管理者のみ
	if user.Role == model.RoleSeller || user.Role == model.RoleAdmin {
		setIf(&user.BusinessName, in.BusinessName)
		setIf(&user.BusinessDescription, in.BusinessDescription)
	}

	if in.Password != "" {
		if len(in.Password) < 6 {
			return badRequest("Password must be at least 6 characters long")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
		if err != nil {
			return dbError(err)
		}
		user.PasswordHash = string(hash)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func toUserDTOs(users []model.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return out
}

