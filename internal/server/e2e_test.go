package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/domain/model"
	"naijashop/internal/infra/cache"
	"naijashop/internal/infra/db"
	"naijashop/internal/infra/payment"
	"naijashop/internal/server"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
	app     *server.App
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type userDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authData struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type orderData struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
}

func newTestClient(t *testing.T) *TestClient {
	t.Helper()

	gdb, err := db.OpenMemory(t.Name())
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:   "e2e-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  4,
		GoEnv:       "test",
		FrontendURL: "http://localhost:5173",
		CORSOrigins: []string{"http://localhost:5173"},
	}
	// 商品詳細は本番と同じくredisキャッシュ経由で読む
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app := server.NewApp(cfg, gdb, server.Options{
		Cache:   cache.NewProductCache(rdb, time.Minute, log.New("e2e")),
		Gateway: payment.NewStub(),
	})

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	return &TestClient{
		BaseURL: srv.URL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		app:     app,
	}
}

func (c *TestClient) doJSON(t *testing.T, method, path, bearer string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, data []byte, want int) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body=%s", string(data))
}

func mustDecode[T any](t *testing.T, data []byte) (envelope, T) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	var out T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &out))
	}
	return env, out
}

func (c *TestClient) register(t *testing.T, email, role string) authData {
	t.Helper()
	resp, data := c.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"firstName": "Ada",
		"lastName":  "Obi",
		"email":     email,
		"password":  "password123",
		"role":      role,
	})
	requireStatus(t, resp, data, http.StatusCreated)
	_, out := mustDecode[authData](t, data)
	require.NotEmpty(t, out.Token)
	return out
}

func (c *TestClient) login(t *testing.T, email string) string {
	t.Helper()
	resp, data := c.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	requireStatus(t, resp, data, http.StatusOK)
	_, out := mustDecode[authData](t, data)
	return out.Token
}

// 管理者は自己登録できないのでDBで昇格させてから再ログイン
func (c *TestClient) admin(t *testing.T, email string) string {
	t.Helper()
	c.register(t, email, "customer")

	ctx := context.Background()
	u, err := c.app.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	u.Role = model.RoleAdmin
	require.NoError(t, c.app.Users.Update(ctx, u))

	return c.login(t, email)
}

func (c *TestClient) createProduct(t *testing.T, sellerToken string, price, stock int64) int64 {
	t.Helper()
	resp, data := c.doJSON(t, http.MethodPost, "/api/products", sellerToken, map[string]any{
		"name":        fmt.Sprintf("Ankara Fabric %d", price),
		"description": "6 yards of wax print",
		"price":       price,
		"category":    "clothing",
		"stock":       stock,
	})
	requireStatus(t, resp, data, http.StatusCreated)
	_, p := mustDecode[struct {
		ID int64 `json:"id"`
	}](t, data)
	require.NotZero(t, p.ID)
	return p.ID
}

func (c *TestClient) placeOrder(t *testing.T, token string, productID, qty int64, key string) (*http.Response, []byte) {
	t.Helper()
	headers := []string{}
	if key != "" {
		headers = append(headers, "X-Idempotency-Key", key)
	}
	return c.doJSON(t, http.MethodPost, "/api/orders", token, map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": qty}},
		"shippingAddress": map[string]any{
			"street": "12 Admiralty Way",
			"city":   "Lekki",
			"state":  "Lagos",
		},
		"paymentInfo": map[string]any{"method": "cash_on_delivery"},
	}, headers...)
}

func (c *TestClient) productStock(t *testing.T, id int64) int64 {
	t.Helper()
	resp, data := c.doJSON(t, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), "", nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, p := mustDecode[struct {
		Stock int64 `json:"stock"`
	}](t, data)
	return p.Stock
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)

	resp, data := c.doJSON(t, http.MethodGet, "/api/health", "", nil)
	requireStatus(t, resp, data, http.StatusOK)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "OK", body.Status)
}

func TestRegisterAndLogin(t *testing.T) {
	c := newTestClient(t)

	out := c.register(t, "Ada@Example.com", "customer")
	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.Equal(t, "customer", out.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"firstName": "Ada",
			"lastName":  "Obi",
			"email":     "ada@example.com",
			"password":  "password123",
		})
		requireStatus(t, resp, data, http.StatusBadRequest)
		env, _ := mustDecode[struct{}](t, data)
		assert.False(t, env.Success)
		assert.Equal(t, "User already exists with this email", env.Message)
	})

	t.Run("admin self-registration rejected", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"firstName": "Eve",
			"lastName":  "Root",
			"email":     "eve@example.com",
			"password":  "password123",
			"role":      "admin",
		})
		requireStatus(t, resp, data, http.StatusBadRequest)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "ada@example.com",
			"password": "nope-nope",
		})
		requireStatus(t, resp, data, http.StatusUnauthorized)
	})

	t.Run("me", func(t *testing.T) {
		token := c.login(t, "ada@example.com")
		resp, data := c.doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
		requireStatus(t, resp, data, http.StatusOK)
		_, me := mustDecode[userDTO](t, data)
		assert.Equal(t, out.User.ID, me.ID)
	})
}

func TestAuthRequired(t *testing.T) {
	c := newTestClient(t)

	resp, data := c.doJSON(t, http.MethodGet, "/api/products", "", nil)
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodGet, "/api/orders", "", nil)
	requireStatus(t, resp, data, http.StatusUnauthorized)

	resp, data = c.doJSON(t, http.MethodGet, "/api/cart", "garbage.token.value", nil)
	requireStatus(t, resp, data, http.StatusUnauthorized)
}

func TestProductCreate_RoleGuard(t *testing.T) {
	c := newTestClient(t)
	customer := c.register(t, "buyer@example.com", "customer")

	resp, data := c.doJSON(t, http.MethodPost, "/api/products", customer.Token, map[string]any{
		"name":     "Jollof Spice",
		"price":    1500,
		"category": "other",
		"stock":    3,
	})
	requireStatus(t, resp, data, http.StatusForbidden)

	seller := c.register(t, "seller@example.com", "seller")
	id := c.createProduct(t, seller.Token, 1500, 3)
	assert.Equal(t, int64(3), c.productStock(t, id))
}

func TestOrderLifecycle(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	adminToken := c.admin(t, "admin@example.com")

	productID := c.createProduct(t, seller.Token, 2500, 5)

	resp, data := c.placeOrder(t, buyer.Token, productID, 2, "")
	requireStatus(t, resp, data, http.StatusCreated)
	_, order := mustDecode[orderData](t, data)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, int64(5000), order.TotalAmount)
	assert.Equal(t, int64(3), c.productStock(t, productID))

	orderPath := "/api/orders/" + strconv.FormatInt(order.ID, 10)

	t.Run("non-admin cannot change status", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodPut, orderPath+"/status", buyer.Token, map[string]any{"status": "delivered"})
		requireStatus(t, resp, data, http.StatusForbidden)

		resp, data = c.doJSON(t, http.MethodGet, orderPath, buyer.Token, nil)
		requireStatus(t, resp, data, http.StatusOK)
		_, got := mustDecode[orderData](t, data)
		assert.Equal(t, "pending", got.Status)
	})

	t.Run("other customer cannot read", func(t *testing.T) {
		other := c.register(t, "other@example.com", "customer")
		resp, data := c.doJSON(t, http.MethodGet, orderPath, other.Token, nil)
		requireStatus(t, resp, data, http.StatusForbidden)
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodPut, orderPath+"/status", adminToken, map[string]any{"status": "shipped"})
		requireStatus(t, resp, data, http.StatusOK)

		resp, data = c.doJSON(t, http.MethodPut, orderPath+"/cancel", buyer.Token, nil)
		requireStatus(t, resp, data, http.StatusBadRequest)
		env, _ := mustDecode[struct{}](t, data)
		assert.Equal(t, "Cannot cancel order with status: shipped", env.Message)
	})

	t.Run("admin list", func(t *testing.T) {
		resp, data := c.doJSON(t, http.MethodGet, "/api/admin/orders?status=shipped", adminToken, nil)
		requireStatus(t, resp, data, http.StatusOK)
		_, list := mustDecode[struct {
			Items []orderData `json:"items"`
		}](t, data)
		require.Len(t, list.Items, 1)
		assert.Equal(t, order.ID, list.Items[0].ID)

		resp, data = c.doJSON(t, http.MethodGet, "/api/orders/all", buyer.Token, nil)
		requireStatus(t, resp, data, http.StatusForbidden)
	})
}

func TestOrderCancel_RestoresStock(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	productID := c.createProduct(t, seller.Token, 1000, 4)

	resp, data := c.placeOrder(t, buyer.Token, productID, 3, "")
	requireStatus(t, resp, data, http.StatusCreated)
	_, order := mustDecode[orderData](t, data)
	assert.Equal(t, int64(1), c.productStock(t, productID))

	path := fmt.Sprintf("/api/orders/%d/cancel", order.ID)
	resp, data = c.doJSON(t, http.MethodPut, path, buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, cancelled := mustDecode[orderData](t, data)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, int64(4), c.productStock(t, productID))

	resp, data = c.doJSON(t, http.MethodPut, path, buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusBadRequest)
}

func TestOrderCreate_InsufficientStock(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	productID := c.createProduct(t, seller.Token, 1000, 1)

	resp, data := c.placeOrder(t, buyer.Token, productID, 2, "")
	requireStatus(t, resp, data, http.StatusBadRequest)
	assert.Equal(t, int64(1), c.productStock(t, productID))
}

func TestOrderCreate_Idempotent(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	productID := c.createProduct(t, seller.Token, 800, 10)

	resp, data := c.placeOrder(t, buyer.Token, productID, 1, "checkout-42")
	requireStatus(t, resp, data, http.StatusCreated)
	_, first := mustDecode[orderData](t, data)

	resp, data = c.placeOrder(t, buyer.Token, productID, 1, "checkout-42")
	require.Less(t, resp.StatusCode, 300, "body=%s", string(data))
	_, second := mustDecode[orderData](t, data)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(9), c.productStock(t, productID))

	resp, data = c.doJSON(t, http.MethodGet, "/api/orders", buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, list := mustDecode[struct {
		Items []orderData `json:"items"`
	}](t, data)
	assert.Len(t, list.Items, 1)
}

func TestCartMerge(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	p1 := c.createProduct(t, seller.Token, 500, 10)
	p2 := c.createProduct(t, seller.Token, 700, 10)

	resp, data := c.doJSON(t, http.MethodPost, "/api/cart", buyer.Token, map[string]any{"productId": p1, "quantity": 1})
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodPost, "/api/cart/merge", buyer.Token, map[string]any{
		"items": []map[string]any{
			{"productId": p1, "quantity": 2},
			{"productId": p2, "quantity": 1},
		},
	})
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodGet, "/api/cart", buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, cart := mustDecode[struct {
		Items []struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, data)

	qty := map[int64]int64{}
	for _, it := range cart.Items {
		qty[it.ProductID] = it.Quantity
	}
	assert.Equal(t, map[int64]int64{p1: 3, p2: 1}, qty)
	assert.Equal(t, int64(3*500+700), cart.Total)
}

func TestForceLogout_RevokesToken(t *testing.T) {
	c := newTestClient(t)
	buyer := c.register(t, "buyer@example.com", "customer")
	adminToken := c.admin(t, "admin@example.com")

	resp, data := c.doJSON(t, http.MethodGet, "/api/auth/me", buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)

	path := fmt.Sprintf("/api/users/%d/force-logout", buyer.User.ID)
	resp, data = c.doJSON(t, http.MethodPost, path, buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusForbidden)

	resp, data = c.doJSON(t, http.MethodPost, path, adminToken, nil)
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodGet, "/api/auth/me", buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusUnauthorized)
	env, _ := mustDecode[struct{}](t, data)
	assert.Equal(t, "Token has been revoked", env.Message)

	// 再ログインすれば新しいバージョンのトークンが使える
	fresh := c.login(t, "buyer@example.com")
	resp, data = c.doJSON(t, http.MethodGet, "/api/auth/me", fresh, nil)
	requireStatus(t, resp, data, http.StatusOK)
}

func TestPaymentFlow(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	buyer := c.register(t, "buyer@example.com", "customer")
	intruder := c.register(t, "intruder@example.com", "customer")
	productID := c.createProduct(t, seller.Token, 1200, 5)

	resp, data := c.placeOrder(t, buyer.Token, productID, 1, "")
	requireStatus(t, resp, data, http.StatusCreated)
	_, order := mustDecode[orderData](t, data)

	resp, data = c.doJSON(t, http.MethodGet, "/api/payment/methods", "", nil)
	requireStatus(t, resp, data, http.StatusOK)

	initBody := map[string]any{
		"email":   "buyer@example.com",
		"amount":  "1200",
		"orderId": order.ID,
	}
	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/initialize", "", initBody)
	requireStatus(t, resp, data, http.StatusUnauthorized)
	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/initialize", intruder.Token, initBody)
	requireStatus(t, resp, data, http.StatusForbidden)
	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/initialize", buyer.Token, map[string]any{
		"email":   "buyer@example.com",
		"amount":  "1",
		"orderId": order.ID,
	})
	requireStatus(t, resp, data, http.StatusBadRequest)

	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/initialize", buyer.Token, initBody)
	requireStatus(t, resp, data, http.StatusOK)
	_, started := mustDecode[struct {
		Reference string `json:"reference"`
	}](t, data)
	require.NotEmpty(t, started.Reference)

	verifyBody := map[string]any{"reference": started.Reference}
	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/verify", "", verifyBody)
	requireStatus(t, resp, data, http.StatusUnauthorized)
	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/verify", intruder.Token, verifyBody)
	requireStatus(t, resp, data, http.StatusForbidden)

	resp, data = c.doJSON(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, got := mustDecode[orderData](t, data)
	assert.Equal(t, "pending", got.Status)

	resp, data = c.doJSON(t, http.MethodPost, "/api/payment/verify", buyer.Token, verifyBody)
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), buyer.Token, nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, got = mustDecode[orderData](t, data)
	assert.Equal(t, "confirmed", got.Status)
}

func TestOrderCreate_SameKeyDifferentUsers(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")
	ada := c.register(t, "ada@example.com", "customer")
	bayo := c.register(t, "bayo@example.com", "customer")
	productID := c.createProduct(t, seller.Token, 800, 10)

	resp, data := c.placeOrder(t, ada.Token, productID, 1, "checkout-1")
	requireStatus(t, resp, data, http.StatusCreated)
	_, first := mustDecode[orderData](t, data)

	resp, data = c.placeOrder(t, bayo.Token, productID, 1, "checkout-1")
	requireStatus(t, resp, data, http.StatusCreated)
	_, second := mustDecode[orderData](t, data)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(8), c.productStock(t, productID))
}

func TestProductUpdate_Partial(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")

	resp, data := c.doJSON(t, http.MethodPost, "/api/products", seller.Token, map[string]any{
		"name":        "Shea Butter",
		"description": "Raw unrefined shea",
		"price":       3000,
		"category":    "beauty",
		"brand":       "Kano Naturals",
		"stock":       12,
		"tags":        []string{"skincare"},
	})
	requireStatus(t, resp, data, http.StatusCreated)
	_, created := mustDecode[struct {
		ID int64 `json:"id"`
	}](t, data)

	// 先に詳細を読んでキャッシュに載せる
	require.Equal(t, int64(12), c.productStock(t, created.ID))

	resp, data = c.doJSON(t, http.MethodPut, fmt.Sprintf("/api/products/%d", created.ID), seller.Token, map[string]any{"price": 3500})
	requireStatus(t, resp, data, http.StatusOK)

	resp, data = c.doJSON(t, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), "", nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, got := mustDecode[struct {
		Name  string   `json:"name"`
		Price int64    `json:"price"`
		Brand string   `json:"brand"`
		Stock int64    `json:"stock"`
		Tags  []string `json:"tags"`
	}](t, data)
	assert.Equal(t, "Shea Butter", got.Name)
	assert.Equal(t, int64(3500), got.Price)
	assert.Equal(t, "Kano Naturals", got.Brand)
	assert.Equal(t, int64(12), got.Stock)
	assert.Equal(t, []string{"skincare"}, got.Tags)
}

func TestProductCreate_Inactive(t *testing.T) {
	c := newTestClient(t)
	seller := c.register(t, "seller@example.com", "seller")

	resp, data := c.doJSON(t, http.MethodPost, "/api/products", seller.Token, map[string]any{
		"name":        "Draft Listing",
		"description": "not ready",
		"price":       1000,
		"category":    "other",
		"stock":       1,
		"isActive":    false,
	})
	requireStatus(t, resp, data, http.StatusCreated)
	_, created := mustDecode[struct {
		ID       int64 `json:"id"`
		IsActive bool  `json:"is_active"`
	}](t, data)
	assert.False(t, created.IsActive)

	resp, data = c.doJSON(t, http.MethodGet, fmt.Sprintf("/api/products/%d", created.ID), "", nil)
	requireStatus(t, resp, data, http.StatusNotFound)

	resp, data = c.doJSON(t, http.MethodGet, "/api/products", "", nil)
	requireStatus(t, resp, data, http.StatusOK)
	_, list := mustDecode[struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}](t, data)
	assert.Empty(t, list.Items)
}
