package handler

import (
	"net/http"
	"strconv"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/middleware"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type orderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// /api/orders 配下の管理者ルートと /api/admin/orders
func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	mw := with(requireAuth(cfg, userRepo), middleware.AdminOnly())

	orders := api.Group("/orders")
	orders.GET("/all", h.list, mw...)
	orders.PUT("/:id/status", h.updateStatus, mw...)
	orders.DELETE("/:id", h.delete, mw...)

	admin := api.Group("/admin")
	admin.GET("/orders", h.list, mw...)
	admin.PUT("/orders/:id/status", h.updateStatus, mw...)
	admin.DELETE("/orders/:id", h.delete, mw...)
}

// ?page&limit&status&user_id&from&to（from/toはRFC3339）
func (h *AdminOrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid user_id")
		}
		userID = &id
	}

	from, err := queryTime(c, "from")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid from")
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid to")
	}

	out, err := h.uc.List(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req orderStatusUpdateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), actorFrom(c), id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Order status updated successfully", out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), actorFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Order deleted successfully", nil)
}
