package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 配送先住所（/api/addresses）
type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/addresses")
	auth := requireAuth(cfg, userRepo)

	g.GET("", h.list, auth...)
	g.POST("", h.create, auth...)
	g.PUT("/:id", h.update, auth...)
	g.DELETE("/:id", h.delete, auth...)
	g.PUT("/:id/default", h.setDefault, auth...)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req addressRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Create(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, "Address saved", out)
}

func (h *AddressHandler) update(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req addressRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Update(c.Request().Context(), userID, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Address updated", out)
}

func (h *AddressHandler) delete(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Address deleted", nil)
}

func (h *AddressHandler) setDefault(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Default address updated", nil)
}
