package server

import (
	"naijashop/internal/config"
	"naijashop/internal/handler"
	infraRepo "naijashop/internal/infra/repository"
	"naijashop/internal/repository"
	"naijashop/internal/usecase"
	"naijashop/internal/validator"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// 差し替え可能な外部依存
type Options struct {
	Cache   usecase.ProductCache   // nilならキャッシュなし
	Gateway usecase.PaymentGateway // 必須
}

// App はDIの結果。mainとe2eテストで共通
type App struct {
	Echo   *echo.Echo
	Users  repository.UserRepository
	Outbox repository.OutboxRepository
}

func NewApp(cfg config.Config, db *gorm.DB, opts Options) *App {
	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(db)
	productRepo := infraRepo.NewProductGormRepository(db)
	reviewRepo := infraRepo.NewReviewGormRepository(db)
	cartRepo := infraRepo.NewCartGormRepository(db)
	wishlistRepo := infraRepo.NewWishlistGormRepository(db)
	addressRepo := infraRepo.NewAddressGormRepository(db)
	orderRepo := infraRepo.NewOrderGormRepository(db)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(db)
	outboxRepo := infraRepo.NewOutboxGormRepository(db)
	txm := infraRepo.NewTxManagerGorm(db)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, cartRepo, wishlistRepo, validator.NewAuthValidator(userRepo))
	userUC := usecase.NewUserUsecase(txm, userRepo, cfg.BcryptCost)
	productUC := usecase.NewProductUsecase(txm, productRepo, reviewRepo, opts.Cache)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, addressRepo, opts.Cache)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo, opts.Cache)
	paymentUC := usecase.NewPaymentUsecase(txm, orderRepo, opts.Gateway, cfg.FrontendURL)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	statsUC := usecase.NewStatsUsecase(userRepo, productRepo, orderRepo)

	//Handler生成
	h := Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		User:         handler.NewUserHandler(userUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, statsUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Address:      handler.NewAddressHandler(addressUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
	}

	e := New(cfg)
	RegisterRoutes(e, cfg, userRepo, h)

	return &App{Echo: e, Users: userRepo, Outbox: outboxRepo}
}
