package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"naijashop/internal/domain/model"
	"naijashop/internal/infra/db"
	repo "naijashop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{FirstName: "Chi", LastName: "Eze", Email: email, PasswordHash: "x", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name: name, Description: name + " description", Price: price, Currency: model.CurrencyNGN,
		Category: model.CategoryElectronics, Stock: stock, SellerID: 1, IsActive: true, Tags: []string{"gadget"},
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	gdb := setupDB(t)
	users := NewUserGormRepository(gdb)
	ctx := context.Background()

	u := &model.User{FirstName: "A", LastName: "B", Email: "a@b.com", PasswordHash: "h", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	dup := &model.User{FirstName: "C", LastName: "D", Email: "a@b.com", PasswordHash: "h", Role: model.RoleCustomer, IsActive: true}
	assert.ErrorIs(t, users.Create(ctx, dup), repo.ErrDuplicate)

	_, err := users.FindByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := users.FindByEmail(ctx, " A@B.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepository_Deactivate(t *testing.T) {
	gdb := setupDB(t)
	users := NewUserGormRepository(gdb)
	ctx := context.Background()
	u := seedUser(t, gdb, "d@x.com")

	require.NoError(t, users.Deactivate(ctx, u.ID))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, u.TokenVersion+1, got.TokenVersion)

	assert.ErrorIs(t, users.Deactivate(ctx, 9999), repo.ErrNotFound)
}

func TestCartRepository_AddQuantityMerges(t *testing.T) {
	gdb := setupDB(t)
	cart := NewCartGormRepository(gdb)
	ctx := context.Background()
	u := seedUser(t, gdb, "c@x.com")
	p := seedProduct(t, gdb, "Phone", 1000, 10)

	require.NoError(t, cart.AddQuantity(ctx, u.ID, p.ID, 2))
	require.NoError(t, cart.AddQuantity(ctx, u.ID, p.ID, 3))

	items, err := cart.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)

	require.NoError(t, cart.SetQuantity(ctx, u.ID, p.ID, 1))
	assert.ErrorIs(t, cart.SetQuantity(ctx, u.ID, 404, 1), repo.ErrNotFound)

	require.NoError(t, cart.Remove(ctx, u.ID, p.ID))
	assert.ErrorIs(t, cart.Remove(ctx, u.ID, p.ID), repo.ErrNotFound)
	assert.NoError(t, cart.Clear(ctx, u.ID))
}

func TestCartRepository_ConcurrentAdds(t *testing.T) {
	gdb := setupDB(t)
	cart := NewCartGormRepository(gdb)
	ctx := context.Background()
	u := seedUser(t, gdb, "race@x.com")
	p := seedProduct(t, gdb, "Cable", 500, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cart.AddQuantity(ctx, u.ID, p.ID, 1))
		}()
	}
	wg.Wait()

	items, err := cart.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].Quantity)
}

func TestInventoryRepository_Reserve(t *testing.T) {
	gdb := setupDB(t)
	inv := NewInventoryGormRepository(gdb)
	products := NewProductGormRepository(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "Laptop", 250000, 2)

	ok, err := inv.Reserve(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = inv.Reserve(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)

	require.NoError(t, inv.Release(ctx, p.ID, 2))
	got, _ = products.FindByID(ctx, p.ID)
	assert.Equal(t, int64(2), got.Stock)
}

func TestInventoryRepository_Adjust(t *testing.T) {
	gdb := setupDB(t)
	inv := NewInventoryGormRepository(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "Blender", 45000, 7)

	require.NoError(t, inv.Adjust(ctx, model.NewStockSet(p.ID, 1, 7, 12, "restock")))

	var got model.Product
	require.NoError(t, gdb.First(&got, p.ID).Error)
	assert.Equal(t, int64(12), got.Stock)

	var adj model.InventoryAdjustment
	require.NoError(t, gdb.First(&adj).Error)
	assert.Equal(t, int64(5), adj.Delta)
	assert.Equal(t, "restock", adj.Reason)

	assert.ErrorIs(t, inv.Adjust(ctx, model.NewStockSet(9999, 1, 0, 1, "x")), repo.ErrNotFound)
}

func TestAddressRepository_ScopedToUser(t *testing.T) {
	gdb := setupDB(t)
	addresses := NewAddressGormRepository(gdb)
	ctx := context.Background()
	u := seedUser(t, gdb, "a@x.com")
	other := seedUser(t, gdb, "b@x.com")

	first, err := addresses.Create(ctx, model.Address{UserID: u.ID, Street: "1 Marina", City: "Lagos", State: "Lagos", Country: "Nigeria"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	second, err := addresses.Create(ctx, model.Address{UserID: u.ID, Street: "3 Wuse", City: "Abuja", State: "FCT", Country: "Nigeria"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	_, err = addresses.FindForUser(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, addresses.SetDefault(ctx, other.ID, second.ID), repo.ErrNotFound)
	assert.ErrorIs(t, addresses.DeleteForUser(ctx, other.ID, second.ID), repo.ErrNotFound)

	require.NoError(t, addresses.SetDefault(ctx, u.ID, second.ID))
	list, err := addresses.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	require.NoError(t, addresses.DeleteForUser(ctx, u.ID, second.ID))
	list, err = addresses.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)
}

func TestProductRepository_ListPublic(t *testing.T) {
	gdb := setupDB(t)
	products := NewProductGormRepository(gdb)
	ctx := context.Background()

	seedProduct(t, gdb, "Samsung Galaxy", 300000, 5)
	seedProduct(t, gdb, "Tecno Spark", 90000, 5)
	hidden := seedProduct(t, gdb, "Hidden Phone", 1000, 5)
	require.NoError(t, gdb.Model(&hidden).Update("is_active", false).Error)
	gone := seedProduct(t, gdb, "Deleted Phone", 1000, 5)
	require.NoError(t, products.SoftDelete(ctx, gone.ID))

	list, total, err := products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10, SortBy: "price", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Tecno Spark", list[0].Name)

	list, total, err = products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10, Search: "GALAXY"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Samsung Galaxy", list[0].Name)

	_, total, err = products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10, Search: "gadget"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "tags are searched")

	minPrice := int64(100000)
	_, total, err = products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10, MinPrice: &minPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = products.FindByID(ctx, gone.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductRepository_CreateKeepsInactive(t *testing.T) {
	gdb := setupDB(t)
	products := NewProductGormRepository(gdb)
	ctx := context.Background()

	created, err := products.Create(ctx, model.Product{
		Name: "Draft", Description: "not listed yet", Price: 500, Currency: model.CurrencyNGN,
		Category: model.CategoryHome, Stock: 2, SellerID: 1, IsActive: false,
	})
	require.NoError(t, err)

	got, err := products.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, total, err := products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestProductRepository_UpdateKeepsTags(t *testing.T) {
	gdb := setupDB(t)
	products := NewProductGormRepository(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "Kettle", 15000, 3)

	p.Tags = []string{"kitchen", "home"}
	p.IsActive = false
	require.NoError(t, products.Update(ctx, p))

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen", "home"}, got.Tags)
	assert.False(t, got.IsActive)
}

func TestReviewRepository_OnePerUser(t *testing.T) {
	gdb := setupDB(t)
	reviews := NewReviewGormRepository(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "Book", 5000, 3)

	require.NoError(t, reviews.Create(ctx, &model.Review{ProductID: p.ID, UserID: 1, Name: "A", Rating: 5}))
	require.NoError(t, reviews.Create(ctx, &model.Review{ProductID: p.ID, UserID: 2, Name: "B", Rating: 2}))
	assert.ErrorIs(t, reviews.Create(ctx, &model.Review{ProductID: p.ID, UserID: 1, Name: "A", Rating: 1}), repo.ErrDuplicate)

	avg, n, err := reviews.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.InDelta(t, 3.5, avg, 0.001)
}

func TestWishlistRepository_AddIsIdempotent(t *testing.T) {
	gdb := setupDB(t)
	wl := NewWishlistGormRepository(gdb)
	ctx := context.Background()

	require.NoError(t, wl.Add(ctx, 1, 7))
	require.NoError(t, wl.Add(ctx, 1, 7))

	n, err := wl.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, wl.Remove(ctx, 1, 7))
	assert.ErrorIs(t, wl.Remove(ctx, 1, 7), repo.ErrNotFound)
}

func TestOrderRepository_StatsAndIdempotency(t *testing.T) {
	gdb := setupDB(t)
	orders := NewOrderGormRepository(gdb)
	ctx := context.Background()
	key := "idem-1"

	mk := func(status model.OrderStatus, total int64, k *string) *model.Order {
		o := &model.Order{
			UserID: 1, Status: status, TotalAmount: total, IdempotencyKey: k,
			Shipping: model.ShippingAddress{Street: "1 Allen Ave", City: "Ikeja", State: "Lagos", Country: "Nigeria"},
			Payment:  model.PaymentInfo{Method: model.PaymentMethodCard, Status: model.PaymentStatusPending},
		}
		require.NoError(t, orders.Create(ctx, o))
		return o
	}
	first := mk(model.OrderStatusPending, 1000, &key)
	mk(model.OrderStatusCancelled, 5000, nil)
	mk(model.OrderStatusDelivered, 2000, nil)

	got, found, err := orders.FindByIdempotencyKey(ctx, 1, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first.ID, got.ID)

	_, found, err = orders.FindByIdempotencyKey(ctx, 2, key)
	require.NoError(t, err)
	assert.False(t, found)

	// キーはユーザーごと
	other := &model.Order{
		UserID: 2, Status: model.OrderStatusPending, TotalAmount: 700, IdempotencyKey: &key,
		Shipping: model.ShippingAddress{Street: "2 Allen Ave", City: "Ikeja", State: "Lagos", Country: "Nigeria"},
		Payment:  model.PaymentInfo{Method: model.PaymentMethodCard, Status: model.PaymentStatusPending},
	}
	require.NoError(t, orders.Create(ctx, other))
	got, found, err = orders.FindByIdempotencyKey(ctx, 2, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, other.ID, got.ID)

	dup := &model.Order{
		UserID: 1, Status: model.OrderStatusPending, TotalAmount: 1000, IdempotencyKey: &key,
		Shipping: model.ShippingAddress{Street: "1 Allen Ave", City: "Ikeja", State: "Lagos", Country: "Nigeria"},
		Payment:  model.PaymentInfo{Method: model.PaymentMethodCard, Status: model.PaymentStatusPending},
	}
	assert.ErrorIs(t, orders.Create(ctx, dup), repo.ErrDuplicate)

	rev, err := orders.Revenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), rev)

	byStatus, err := orders.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byStatus[model.OrderStatusPending])
	assert.Equal(t, int64(1), byStatus[model.OrderStatusCancelled])

	now := time.Now()
	require.NoError(t, orders.UpdateStatus(ctx, first.ID, model.OrderStatusDelivered, &now))
	got, err = orders.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	assert.NotNil(t, got.DeliveredAt)

	require.NoError(t, orders.UpdatePayment(ctx, first.ID, model.PaymentInfo{Method: model.PaymentMethodCard, Status: model.PaymentStatusPending, Reference: "ref_1"}))
	byRef, err := orders.FindByPaymentReference(ctx, "ref_1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byRef.ID)
}

func TestTxManager_RollsBack(t *testing.T) {
	gdb := setupDB(t)
	tm := NewTxManagerGorm(gdb)
	ctx := context.Background()
	p := seedProduct(t, gdb, "Rollback", 100, 5)

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Inventory().Reserve(ctx, p.ID, 5)
		require.NoError(t, err)
		require.True(t, ok)
		return repo.ErrNotFound
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := NewProductGormRepository(gdb).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)
}

func TestOutboxRepository_PendingLifecycle(t *testing.T) {
	gdb := setupDB(t)
	outbox := NewOutboxGormRepository(gdb)
	ctx := context.Background()

	ev := &model.OutboxEvent{EventID: "e1", Topic: model.TopicOrderCreated, Payload: `{"order_id":1}`}
	require.NoError(t, outbox.Create(ctx, ev))

	pending, err := outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, outbox.MarkFailed(ctx, ev.ID, "broker down"))
	require.NoError(t, outbox.MarkPublished(ctx, ev.ID, time.Now()))

	pending, err = outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
