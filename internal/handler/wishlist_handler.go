package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

type wishlistRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
}

func (h *WishlistHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/wishlist")
	auth := requireAuth(cfg, userRepo)

	g.GET("", h.get, auth...)
	g.POST("", h.add, auth...)
	g.DELETE("/:productId", h.remove, auth...)
}

func (h *WishlistHandler) get(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	out, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

// 既に入っていてもエラーにしない
func (h *WishlistHandler) add(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req wishlistRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Product added to wishlist", out)
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, valid := parseIDParam(c, "productId")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid product id")
	}

	out, err := h.uc.Remove(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Product removed from wishlist", out)
}
