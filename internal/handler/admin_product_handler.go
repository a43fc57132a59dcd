package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/middleware"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/admin/inventory と /api/admin/stats
type AdminProductHandler struct {
	products *usecase.ProductUsecase
	stats    *usecase.StatsUsecase
}

func NewAdminProductHandler(products *usecase.ProductUsecase, stats *usecase.StatsUsecase) *AdminProductHandler {
	return &AdminProductHandler{products: products, stats: stats}
}

type stockUpdateRequest struct {
	Stock  *int64 `json:"stock" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
}

func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	mw := with(requireAuth(cfg, userRepo), middleware.AdminOnly())

	admin := api.Group("/admin")
	admin.PUT("/inventory/:productId", h.updateStock, mw...)
	admin.GET("/stats", h.dashboard, mw...)
}

// 在庫をセット（差分は在庫履歴に残る）
func (h *AdminProductHandler) updateStock(c echo.Context) error {
	id, valid := parseIDParam(c, "productId")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid product id")
	}

	var req stockUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.products.SetStock(c.Request().Context(), actorFrom(c), id, *req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Stock updated", out)
}

func (h *AdminProductHandler) dashboard(c echo.Context) error {
	out, err := h.stats.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}
