package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/middleware"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/users のHTTP（プロフィール・管理者のユーザー管理）
type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type profileRequest struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	City                string `json:"city"`
	State               string `json:"state"`
	Country             string `json:"country"`
	BusinessName        string `json:"businessName"`
	BusinessDescription string `json:"businessDescription"`
}

type userUpdateRequest struct {
	profileRequest
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (r profileRequest) toInput() usecase.ProfileUpdateInput {
	return usecase.ProfileUpdateInput{
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Password:            r.Password,
		Phone:               r.Phone,
		Address:             r.Address,
		City:                r.City,
		State:               r.State,
		Country:             r.Country,
		BusinessName:        r.BusinessName,
		BusinessDescription: r.BusinessDescription,
	}
}

func (h *UserHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	auth := requireAuth(cfg, userRepo)
	admin := with(auth, middleware.AdminOnly())

	g := api.Group("/users")
	g.GET("/sellers", h.sellers)
	g.GET("/profile", h.profile, auth...)
	g.PUT("/profile", h.updateProfile, auth...)
	g.GET("", h.list, admin...)
	g.GET("/:id", h.get, auth...)
	g.PUT("/:id", h.update, auth...)
	g.DELETE("/:id", h.deactivate, admin...)
	g.POST("/:id/force-logout", h.forceLogout, admin...)
}

func (h *UserHandler) profile(c echo.Context) error {
	actor := actorFrom(c)
	out, err := h.uc.Get(c.Request().Context(), actor, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req profileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Profile updated successfully", out)
}

// GET /api/users?page&limit&role&search（管理者）
func (h *UserHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	out, err := h.uc.List(c.Request().Context(), page, limit, c.QueryParam("role"), c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

// 公開の出品者一覧
func (h *UserHandler) sellers(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	out, err := h.uc.ListSellers(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *UserHandler) get(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *UserHandler) update(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req userUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Update(c.Request().Context(), actorFrom(c), id, usecase.AdminUserUpdateInput{
		ProfileUpdateInput: req.toInput(),
		Role:               req.Role,
		IsActive:           req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "User updated successfully", out)
}

// 物理削除はしない（無効化＋強制ログアウト）
func (h *UserHandler) deactivate(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Deactivate(c.Request().Context(), actorFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "User deactivated successfully", nil)
}

func (h *UserHandler) forceLogout(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.ForceLogout(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "User logged out from all sessions", out)
}
