package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"naijashop/internal/usecase"

	"github.com/shopspring/decimal"
)

// ErrUnavailable はバックエンドに到達できなかったとき
var ErrUnavailable = errors.New("backend unavailable")

// APIError はバックエンドが返したエラーレスポンス
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func statusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// 到達不能か404ならローカルデータへ切り替える
func shouldFallback(err error) bool {
	return errors.Is(err, ErrUnavailable) || statusOf(err) == http.StatusNotFound
}

func isUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client はnaijashop APIのHTTPクライアント。リトライはしない。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type ProductQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

type OrderItemRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Price     *int64 `json:"price,omitempty"`
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

type OrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress,omitempty"`
	AddressID       int64              `json:"addressId,omitempty"`
	PaymentInfo     struct {
		Method string `json:"method"`
	} `json:"paymentInfo"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (usecase.AuthResult, error) {
	var out usecase.AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", nil, req, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (usecase.AuthResult, error) {
	var out usecase.AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", nil, body, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (usecase.UserDTO, error) {
	var out usecase.UserDTO
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, nil, &out)
	return out, err
}

func (c *Client) Products(ctx context.Context, q ProductQuery) (usecase.ProductListOutput, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	var out usecase.ProductListOutput
	err := c.do(ctx, http.MethodGet, "/api/products", "", v, nil, &out)
	return out, err
}

func (c *Client) Cart(ctx context.Context, token string) (usecase.CartOutput, error) {
	var out usecase.CartOutput
	err := c.do(ctx, http.MethodGet, "/api/cart", token, nil, nil, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, token string, productID, quantity int64) (usecase.CartOutput, error) {
	var out usecase.CartOutput
	body := map[string]int64{"productId": productID, "quantity": quantity}
	err := c.do(ctx, http.MethodPost, "/api/cart", token, nil, body, &out)
	return out, err
}

func (c *Client) UpdateCart(ctx context.Context, token string, productID, quantity int64) (usecase.CartOutput, error) {
	var out usecase.CartOutput
	body := map[string]int64{"quantity": quantity}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", productID), token, nil, body, &out)
	return out, err
}

func (c *Client) RemoveFromCart(ctx context.Context, token string, productID int64) (usecase.CartOutput, error) {
	var out usecase.CartOutput
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", productID), token, nil, nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest, idempotencyKey string) (usecase.OrderOutput, error) {
	var out usecase.OrderOutput
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["X-Idempotency-Key"] = idempotencyKey
	}
	err := c.doWithHeaders(ctx, http.MethodPost, "/api/orders", token, nil, headers, req, &out)
	return out, err
}

// 注文した本人のトークンが必要
func (c *Client) InitializePayment(ctx context.Context, token, email string, amount decimal.Decimal, orderID int64) (usecase.PaymentInitResult, error) {
	var out usecase.PaymentInitResult
	body := struct {
		Email   string          `json:"email"`
		Amount  decimal.Decimal `json:"amount"`
		OrderID int64           `json:"orderId"`
	}{email, amount, orderID}
	err := c.do(ctx, http.MethodPost, "/api/payment/initialize", token, nil, body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	return c.doWithHeaders(ctx, method, path, token, query, nil, body, out)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path, token string, query url.Values, headers map[string]string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
