package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type addCartRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  *int64 `json:"quantity"`
}

type updateCartRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  *int64 `json:"quantity"`
}

type mergeCartRequest struct {
	Items []addCartRequest `json:"items"`
}

func (h *CartHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/cart")
	auth := requireAuth(cfg, userRepo)

	g.GET("", h.getCart, auth...)
	g.POST("", h.addToCart, auth...)
	g.POST("/add", h.addToCart, auth...)
	g.POST("/merge", h.merge, auth...)
	g.PUT("/update", h.updateItem, auth...)
	g.PUT("/:productId", h.updateItem, auth...)
	g.DELETE("", h.clear, auth...)
	g.DELETE("/clear", h.clear, auth...)
	g.DELETE("/:productId", h.deleteItem, auth...)
}

func (h *CartHandler) getCart(c echo.Context) error {
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

// quantity省略時は1
func (h *CartHandler) addToCart(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req addCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req.line())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Item added to cart", out)
}

func (r addCartRequest) line() usecase.CartLine {
	qty := int64(1)
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	return usecase.CartLine{ProductID: r.ProductID, Quantity: qty}
}

// PUT /api/cart/:productId と PUT /api/cart/update の両方
func (h *CartHandler) updateItem(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req updateCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if c.Param("productId") != "" {
		id, valid := parseIDParam(c, "productId")
		if !valid {
			return fail(c, http.StatusBadRequest, "invalid product id")
		}
		req.ProductID = id
	}
	if req.Quantity == nil {
		return fail(c, http.StatusBadRequest, "Valid product ID and quantity are required")
	}

	out, err := h.uc.Update(c.Request().Context(), userID, usecase.CartLine{ProductID: req.ProductID, Quantity: *req.Quantity})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Cart updated", out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
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
	return success(c, http.StatusOK, "Item removed from cart", out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Cart cleared", usecase.CartOutput{Items: []usecase.CartItemOutput{}})
}

// ゲストカートの取り込み（1行ずつ結果を返す）
func (h *CartHandler) merge(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req mergeCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	lines := make([]usecase.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, it.line())
	}

	out, err := h.uc.Merge(c.Request().Context(), userID, lines)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Cart merged", out)
}
