package usecase_test

import (
	"context"
	"testing"
	"time"

	"naijashop/internal/domain/model"
	"naijashop/internal/infra/cache"
	"naijashop/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisProductCache(t *testing.T) *cache.ProductCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewProductCache(rdb, time.Minute, log.New("test"))
}

// 注文で在庫が動いたらキャッシュ済みの詳細も最新になる
func TestOrderUsecase_StockChangesRefreshCachedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pc := newRedisProductCache(t)
	products := newProductUsecase(f, pc)
	orders := usecase.NewOrderUsecase(f.tx, f.orders, f.items, f.addresses, pc)

	u := f.user(t, "buyer@x.com", model.RoleCustomer)
	p := f.product(t, "Phone", 1000, 1)

	before, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), before.Stock)
	require.True(t, before.IsAvailable)

	order, err := orders.Create(ctx, u.ID, usecase.CreateOrderInput{
		Items:    []usecase.OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		Shipping: lagos(),
	})
	require.NoError(t, err)

	sold, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sold.Stock)
	assert.False(t, sold.IsAvailable)

	_, err = orders.Cancel(ctx, customer(u.ID), order.ID)
	require.NoError(t, err)

	restored, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), restored.Stock)
}

func TestAdminOrderUsecase_StockChangesRefreshCachedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pc := newRedisProductCache(t)
	products := newProductUsecase(f, pc)
	orders := usecase.NewOrderUsecase(f.tx, f.orders, f.items, f.addresses, pc)
	adminOrders := usecase.NewAdminOrderUsecase(f.tx, f.orders, f.items, pc)

	u := f.user(t, "buyer@x.com", model.RoleCustomer)
	p := f.product(t, "Phone", 1000, 3)

	order, err := orders.Create(ctx, u.ID, usecase.CreateOrderInput{
		Items:    []usecase.OrderLineInput{{ProductID: p.ID, Quantity: 2}},
		Shipping: lagos(),
	})
	require.NoError(t, err)

	// キャッシュに載せる
	cached, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.Stock)

	_, err = adminOrders.UpdateStatus(ctx, admin(9), order.ID, "cancelled")
	require.NoError(t, err)
	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Stock)

	_, err = adminOrders.UpdateStatus(ctx, admin(9), order.ID, "pending")
	require.NoError(t, err)
	got, err = products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stock)

	require.NoError(t, adminOrders.Delete(ctx, admin(9), order.ID))
	got, err = products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Stock)
}
