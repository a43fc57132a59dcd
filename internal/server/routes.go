package server

import (
	"net/http"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/handler"
	"naijashop/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Address      *handler.AddressHandler
	Wishlist     *handler.WishlistHandler
	Payment      *handler.PaymentHandler
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "OK", Timestamp: time.Now().UTC()})
	})

	h.Auth.RegisterRoutes(api, cfg, userRepo)
	h.User.RegisterRoutes(api, cfg, userRepo)
	h.Product.RegisterRoutes(api, cfg, userRepo)
	h.AdminProduct.RegisterRoutes(api, cfg, userRepo)
	h.Cart.RegisterRoutes(api, cfg, userRepo)
	h.Order.RegisterRoutes(api, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(api, cfg, userRepo)
	h.Address.RegisterRoutes(api, cfg, userRepo)
	h.Wishlist.RegisterRoutes(api, cfg, userRepo)
	h.Payment.RegisterRoutes(api, cfg, userRepo)
}
