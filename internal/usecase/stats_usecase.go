package usecase

import (
	"context"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"golang.org/x/sync/errgroup"
)

// 在庫がこの数以下なら low stock
const lowStockThreshold = 5

type DashboardStats struct {
	Users            int64                       `json:"users"`
	Products         int64                       `json:"products"`
	Orders           int64                       `json:"orders"`
	Revenue          int64                       `json:"revenue"`
	FormattedRevenue string                      `json:"formatted_revenue"`
	OrdersByStatus   map[model.OrderStatus]int64 `json:"orders_by_status"`
	LowStockProducts int64                       `json:"low_stock_products"`
}

type StatsUsecase struct {
	users    repo.UserRepository
	products repo.ProductRepository
	orders   repo.OrderRepository
}

func NewStatsUsecase(users repo.UserRepository, products repo.ProductRepository, orders repo.OrderRepository) *StatsUsecase {
	return &StatsUsecase{users: users, products: products, orders: orders}
}

// 各集計は独立しているので並行に実行する
func (u *StatsUsecase) Dashboard(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := u.users.Count(gctx)
		s.Users = n
		return err
	})
	g.Go(func() error {
		n, err := u.products.Count(gctx)
		s.Products = n
		return err
	})
	g.Go(func() error {
		n, err := u.orders.Count(gctx)
		s.Orders = n
		return err
	})
	g.Go(func() error {
		n, err := u.orders.Revenue(gctx)
		s.Revenue = n
		return err
	})
	g.Go(func() error {
		m, err := u.orders.CountByStatus(gctx)
		s.OrdersByStatus = m
		return err
	})
	g.Go(func() error {
		n, err := u.products.CountLowStock(gctx, lowStockThreshold)
		s.LowStockProducts = n
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, dbError(err)
	}
	s.FormattedRevenue = model.FormatNaira(s.Revenue)
	return s, nil
}
