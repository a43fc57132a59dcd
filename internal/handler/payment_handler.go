package handler

import (
	"net/http"

	"naijashop/internal/config"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /api/payment（スタブゲートウェイ）
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// amountはナイラ（小数可）
type paymentInitRequest struct {
	Email   string          `json:"email"`
	Amount  decimal.Decimal `json:"amount"`
	OrderID int64           `json:"orderId"`
}

type paymentVerifyRequest struct {
	Reference string `json:"reference"`
}

// 一覧は公開、開始と検証はログイン必須
func (h *PaymentHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	auth := requireAuth(cfg, userRepo)

	g := api.Group("/payment")
	g.GET("/methods", h.methods)
	g.GET("/banks", h.banks)
	g.POST("/initialize", h.initialize, auth...)
	g.POST("/verify", h.verify, auth...)
}

func (h *PaymentHandler) methods(c echo.Context) error {
	return success(c, http.StatusOK, "", h.uc.Methods())
}

func (h *PaymentHandler) banks(c echo.Context) error {
	return success(c, http.StatusOK, "", h.uc.Banks())
}

func (h *PaymentHandler) initialize(c echo.Context) error {
	var req paymentInitRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Initialize(c.Request().Context(), actorFrom(c), usecase.PaymentInitInput{
		Email:   req.Email,
		Amount:  req.Amount,
		OrderID: req.OrderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Authorization URL created", out)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	var req paymentVerifyRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Verify(c.Request().Context(), actorFrom(c), req.Reference)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, "Verification successful", out)
}
