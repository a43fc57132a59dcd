package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"naijashop/internal/domain/model"
	"naijashop/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

const (
	SourceBackend = "backend"
	SourceLocal   = "local"
)

var (
	ErrNotLoggedIn = errors.New("please log in first")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrNotInCart   = errors.New("product not found in cart")
)

// Shell はストアフロントのセッション状態を持つ。
// 認証済みならバックエンドを優先し、到達不能/404のときだけローカルデータに切り替える（1回のみ、リトライなし）。
type Shell struct {
	api    *Client
	store  SessionStore
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	session Session
}

func NewShell(api *Client, store SessionStore, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.New("storefront")
	}
	return &Shell{api: api, store: store, logger: logger, now: time.Now}
}

// VerifyResult はRestore後のトークン再検証の結果
type VerifyResult struct {
	User    *usecase.UserDTO
	Evicted bool
	Err     error
}

// Restore は保存済みセッションを読み、ユーザーを楽観的に返す。
// 再検証はバックグラウンドで行い、401のときだけセッションを消す。
func (s *Shell) Restore(ctx context.Context) (*usecase.UserDTO, <-chan VerifyResult, error) {
	sess, err := s.store.Load()
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	ch := make(chan VerifyResult, 1)
	if !sess.Authenticated() {
		ch <- VerifyResult{}
		close(ch)
		return nil, ch, nil
	}

	go func() {
		defer close(ch)
		ch <- s.verify(ctx, sess.Token, sess.User)
	}()
	return sess.User, ch, nil
}

func (s *Shell) verify(ctx context.Context, token string, optimistic *usecase.UserDTO) VerifyResult {
	u, err := s.api.Me(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 検証中にログアウト/再ログインされていたら何もしない
	if s.session.Token != token {
		return VerifyResult{User: optimistic, Err: err}
	}

	switch {
	case err == nil:
		s.session.User = &u
		s.session.ExpiresAt = s.now().Add(SessionTTL)
		if sErr := s.store.Save(s.session); sErr != nil {
			s.logger.Warnf("save session: %v", sErr)
		}
		return VerifyResult{User: &u}
	case isUnauthorized(err):
		s.evictLocked()
		return VerifyResult{Evicted: true, Err: err}
	default:
		s.logger.Warnf("token verification skipped: %v", err)
		return VerifyResult{User: optimistic, Err: err}
	}
}

// 401のときはユーザーとカートを両方消す
func (s *Shell) evictLocked() {
	s.session = Session{}
	if err := s.store.Clear(); err != nil {
		s.logger.Warnf("clear session: %v", err)
	}
}

func (s *Shell) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// LoginResult はログイン時のゲストカート取り込み結果
type LoginResult struct {
	User     usecase.UserDTO
	Merged   []GuestLine
	Unmerged []GuestLine
}

func (s *Shell) Login(ctx context.Context, email, password string) (LoginResult, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	return s.startSession(ctx, res)
}

func (s *Shell) Register(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	res, err := s.api.Register(ctx, req)
	if err != nil {
		return LoginResult{}, err
	}
	return s.startSession(ctx, res)
}

// セッションを保存してから、ゲストカートを1行ずつバックエンドへ送る。
// 失敗した行はゲストカートに残す。
func (s *Shell) startSession(ctx context.Context, res usecase.AuthResult) (LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := res.User
	s.session.Token = res.Token
	s.session.User = &user
	s.session.ExpiresAt = s.now().Add(SessionTTL)
	if err := s.store.Save(s.session); err != nil {
		return LoginResult{}, err
	}

	out := LoginResult{User: user, Merged: []GuestLine{}, Unmerged: []GuestLine{}}
	for _, line := range s.session.GuestCart {
		if _, err := s.api.AddToCart(ctx, res.Token, line.ProductID, line.Quantity); err != nil {
			s.logger.Warnf("guest cart line %d not merged: %v", line.ProductID, err)
			out.Unmerged = append(out.Unmerged, line)
			continue
		}
		out.Merged = append(out.Merged, line)
	}

	if len(out.Unmerged) == 0 {
		s.session.GuestCart = nil
	} else {
		s.session.GuestCart = out.Unmerged
	}
	if err := s.store.Save(s.session); err != nil {
		return out, err
	}
	return out, nil
}

// トークン破棄はクライアント側のみ
func (s *Shell) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Authenticated() {
		if err := s.api.Logout(ctx, s.session.Token); err != nil {
			s.logger.Warnf("logout request failed: %v", err)
		}
	}
	s.session = Session{}
	return s.store.Clear()
}

type CartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartView struct {
	Items  []CartLineView `json:"items"`
	Total  int64          `json:"total"`
	Source string         `json:"source"`
}

func (s *Shell) Cart(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBackend(func(token string) (CartView, error) {
		out, err := s.api.Cart(ctx, token)
		return backendView(out), err
	}, func() (CartView, error) {
		return s.localViewLocked(), nil
	})
}

// AddToCart は同じ商品なら数量を足す
func (s *Shell) AddToCart(ctx context.Context, item GuestLine) (CartView, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBackend(func(token string) (CartView, error) {
		out, err := s.api.AddToCart(ctx, token, item.ProductID, item.Quantity)
		return backendView(out), err
	}, func() (CartView, error) {
		for i := range s.session.GuestCart {
			if s.session.GuestCart[i].ProductID == item.ProductID {
				s.session.GuestCart[i].Quantity += item.Quantity
				return s.saveLocalLocked()
			}
		}
		s.session.GuestCart = append(s.session.GuestCart, item)
		return s.saveLocalLocked()
	})
}

// 数量0は削除
func (s *Shell) SetQuantity(ctx context.Context, productID, quantity int64) (CartView, error) {
	if quantity < 0 {
		return CartView{}, fmt.Errorf("quantity must be >= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBackend(func(token string) (CartView, error) {
		out, err := s.api.UpdateCart(ctx, token, productID, quantity)
		return backendView(out), err
	}, func() (CartView, error) {
		if quantity == 0 {
			return s.removeLocalLocked(productID)
		}
		for i := range s.session.GuestCart {
			if s.session.GuestCart[i].ProductID == productID {
				s.session.GuestCart[i].Quantity = quantity
				return s.saveLocalLocked()
			}
		}
		return CartView{}, ErrNotInCart
	})
}

func (s *Shell) Remove(ctx context.Context, productID int64) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBackend(func(token string) (CartView, error) {
		out, err := s.api.RemoveFromCart(ctx, token, productID)
		return backendView(out), err
	}, func() (CartView, error) {
		return s.removeLocalLocked(productID)
	})
}

// withBackend は認証済みならremoteを1回だけ試し、401/到達不能/404ならlocalへ切り替える
func (s *Shell) withBackend(remote func(token string) (CartView, error), local func() (CartView, error)) (CartView, error) {
	if s.session.Authenticated() {
		view, err := remote(s.session.Token)
		switch {
		case err == nil:
			view.Source = SourceBackend
			return view, nil
		case isUnauthorized(err):
			s.logger.Warnf("session expired, continuing as guest")
			s.evictLocked()
		case shouldFallback(err):
			s.logger.Warnf("backend cart unavailable, using local cart: %v", err)
		default:
			return CartView{}, err
		}
	}
	return local()
}

func (s *Shell) removeLocalLocked(productID int64) (CartView, error) {
	for i := range s.session.GuestCart {
		if s.session.GuestCart[i].ProductID == productID {
			s.session.GuestCart = append(s.session.GuestCart[:i], s.session.GuestCart[i+1:]...)
			return s.saveLocalLocked()
		}
	}
	return CartView{}, ErrNotInCart
}

func (s *Shell) saveLocalLocked() (CartView, error) {
	if err := s.store.Save(s.session); err != nil {
		return CartView{}, err
	}
	return s.localViewLocked(), nil
}

func (s *Shell) localViewLocked() CartView {
	view := CartView{Items: []CartLineView{}, Source: SourceLocal}
	for _, l := range s.session.GuestCart {
		sub := l.Price * l.Quantity
		view.Items = append(view.Items, CartLineView{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity, Subtotal: sub})
		view.Total += sub
	}
	return view
}

func backendView(out usecase.CartOutput) CartView {
	view := CartView{Items: []CartLineView{}, Total: out.Total}
	for _, it := range out.Items {
		if !it.Available {
			continue
		}
		view.Items = append(view.Items, CartLineView{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity, Subtotal: it.Subtotal})
	}
	return view
}

type ProductList struct {
	Items  []model.ProductView `json:"items"`
	Source string              `json:"source"`
}

// Products はバックエンドが使えない（または空で返した）ときサンプルカタログを返す
func (s *Shell) Products(ctx context.Context, q ProductQuery) (ProductList, error) {
	out, err := s.api.Products(ctx, q)
	if err == nil && (len(out.Items) > 0 || q.Search != "" || q.Category != "") {
		return ProductList{Items: out.Items, Source: SourceBackend}, nil
	}
	if err != nil && !shouldFallback(err) && statusOf(err) < 500 {
		return ProductList{}, err
	}
	if err != nil {
		s.logger.Warnf("products unavailable, using sample catalog: %v", err)
	}

	now := s.now()
	items := []model.ProductView{}
	for _, p := range sampleProducts(q.Search, q.Category) {
		items = append(items, p.View(now))
	}
	return ProductList{Items: items, Source: SourceLocal}, nil
}

type CheckoutInput struct {
	Shipping      ShippingAddress
	AddressID     int64
	PaymentMethod string
}

type CheckoutResult struct {
	Order   usecase.OrderOutput        `json:"order"`
	Payment *usecase.PaymentInitResult `json:"payment,omitempty"`
}

// Checkout はバックエンドのカートを注文にし、カード払いなら決済を初期化する
func (s *Shell) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Authenticated() || s.session.User == nil {
		return CheckoutResult{}, ErrNotLoggedIn
	}
	token := s.session.Token

	cart, err := s.api.Cart(ctx, token)
	if isUnauthorized(err) {
		s.evictLocked()
		return CheckoutResult{}, ErrNotLoggedIn
	}
	if err != nil {
		return CheckoutResult{}, err
	}

	req := OrderRequest{AddressID: in.AddressID}
	for _, it := range cart.Items {
		if !it.Available {
			continue
		}
		price := it.Price
		req.Items = append(req.Items, OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: &price})
	}
	if len(req.Items) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}
	if in.AddressID == 0 {
		shipping := in.Shipping
		req.ShippingAddress = &shipping
	}
	method := in.PaymentMethod
	if method == "" {
		method = string(model.PaymentMethodCard)
	}
	req.PaymentInfo.Method = method

	order, err := s.api.CreateOrder(ctx, token, req, uuid.NewString())
	if err != nil {
		return CheckoutResult{}, err
	}
	result := CheckoutResult{Order: order}

	if method != string(model.PaymentMethodCard) {
		return result, nil
	}
	pay, err := s.api.InitializePayment(ctx, token, s.session.User.Email, decimal.NewFromInt(order.TotalAmount), order.ID)
	if err != nil {
		return result, fmt.Errorf("order %d created but payment initialization failed: %w", order.ID, err)
	}
	result.Payment = &pay
	return result, nil
}
