package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type orderItemRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Price     *int64 `json:"price"`
}

type addressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

func (r addressRequest) toInput() usecase.AddressInput {
	return usecase.AddressInput{
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
}

type paymentInfoRequest struct {
	Method string `json:"method"`
}

type orderCreateRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress *addressRequest    `json:"shippingAddress"`
	AddressID       int64              `json:"addressId"`
	PaymentInfo     paymentInfoRequest `json:"paymentInfo"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/orders")
	auth := requireAuth(cfg, userRepo)

	g.POST("", h.create, auth...)
	g.GET("", h.list, auth...)
	g.GET("/:id", h.detail, auth...)
	g.PUT("/:id/cancel", h.cancel, auth...)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	var req orderCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	in := usecase.CreateOrderInput{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentInfo.Method,
		//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
		IdempotencyKey: c.Request().Header.Get("X-Idempotency-Key"),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	if req.ShippingAddress != nil {
		a := req.ShippingAddress.toInput()
		in.Shipping = &a
	}

	out, err := h.uc.Create(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, "Order created successfully", out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, authed := getUserIDFromContext(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	out, err := h.uc.ListMine(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
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

func (h *OrderHandler) cancel(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.Cancel(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Order cancelled successfully", out)
}
