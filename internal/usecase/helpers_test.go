package usecase_test

import (
	"context"
	"testing"

	"naijashop/internal/domain/model"
	"naijashop/internal/infra/db"
	gormrepo "naijashop/internal/infra/repository"
	repo "naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture は sqlite(in-memory) 上の実リポジトリ一式
type fixture struct {
	db        *gorm.DB
	tx        repo.TransactionManager
	users     repo.UserRepository
	products  repo.ProductRepository
	reviews   repo.ReviewRepository
	cart      repo.CartRepository
	wishlist  repo.WishlistRepository
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	addresses repo.AddressRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &fixture{
		db:        gdb,
		tx:        gormrepo.NewTxManagerGorm(gdb),
		users:     gormrepo.NewUserGormRepository(gdb),
		products:  gormrepo.NewProductGormRepository(gdb),
		reviews:   gormrepo.NewReviewGormRepository(gdb),
		cart:      gormrepo.NewCartGormRepository(gdb),
		wishlist:  gormrepo.NewWishlistGormRepository(gdb),
		orders:    gormrepo.NewOrderGormRepository(gdb),
		items:     gormrepo.NewOrderItemGormRepository(gdb),
		addresses: gormrepo.NewAddressGormRepository(gdb),
	}
}

func (f *fixture) user(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{FirstName: "Chi", LastName: "Eze", Email: email, PasswordHash: "x", Role: role, IsActive: true, Country: "Nigeria"}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) product(t *testing.T, name string, price, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name: name, Description: name + " description", Price: price, Currency: model.CurrencyNGN,
		Category: model.CategoryElectronics, Stock: stock, SellerID: 1, IsActive: true,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) deactivate(t *testing.T, productID int64) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", productID).Update("is_active", false).Error)
}

func (f *fixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.Unscoped().First(&p, productID).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *fixture) addToCart(t *testing.T, userID, productID, qty int64) {
	t.Helper()
	require.NoError(t, f.cart.AddQuantity(context.Background(), userID, productID, qty))
}

func customer(id int64) usecase.Actor { return usecase.Actor{UserID: id, Role: model.RoleCustomer} }
func seller(id int64) usecase.Actor   { return usecase.Actor{UserID: id, Role: model.RoleSeller} }
func admin(id int64) usecase.Actor    { return usecase.Actor{UserID: id, Role: model.RoleAdmin} }

func ptr[T any](v T) *T { return &v }

// HTTPErrorのステータスとメッセージを確認する
func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !assert.True(t, ok, "want HTTPError, got %v", err) {
		return
	}
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
}
