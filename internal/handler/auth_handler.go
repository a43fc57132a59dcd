package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /api/auth/register のリクエストボディ。
type registerRequest struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	Role                string `json:"role"`
	Phone               string `json:"phone"`
	BusinessName        string `json:"businessName"`
	BusinessDescription string `json:"businessDescription"`
}

// /api/auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)

	auth := requireAuth(cfg, userRepo)
	g.GET("/me", h.me, auth...)
	g.GET("/profile", h.me, auth...)
}

// POST /api/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Password:            req.Password,
		Role:                req.Role,
		Phone:               req.Phone,
		BusinessName:        req.BusinessName,
		BusinessDescription: req.BusinessDescription,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, "User registered successfully", out)
}

// POST /api/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Login successful", out)
}

// トークンはクライアント側で破棄する
func (h *AuthHandler) logout(c echo.Context) error {
	return success(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	out, err := h.uc.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}
