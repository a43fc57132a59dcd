package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"

	"github.com/shopspring/decimal"
)

type PaymentMethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Enabled     bool   `json:"enabled"`
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type PaymentInitRequest struct {
	Email       string
	AmountKobo  int64
	OrderID     int64
	CallbackURL string
}

type PaymentInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
	AmountKobo       int64  `json:"amount_kobo"`
}

type PaymentVerifyResult struct {
	Status          string    `json:"status"`
	Reference       string    `json:"reference"`
	AmountKobo      int64     `json:"amount"`
	GatewayResponse string    `json:"gateway_response"`
	Channel         string    `json:"channel"`
	Currency        string    `json:"currency"`
	TransactionID   string    `json:"transaction_id"`
	PaidAt          time.Time `json:"paid_at"`
}

// 決済ゲートウェイ。現状はスタブのみ
type PaymentGateway interface {
	Methods() []PaymentMethodInfo
	Banks() []Bank
	Initialize(ctx context.Context, req PaymentInitRequest) (PaymentInitResult, error)
	Verify(ctx context.Context, reference string) (PaymentVerifyResult, error)
}

type PaymentUsecase struct {
	tx          repo.TransactionManager
	orders      repo.OrderRepository
	gateway     PaymentGateway
	callbackURL string
}

func NewPaymentUsecase(tx repo.TransactionManager, orders repo.OrderRepository, gateway PaymentGateway, frontendURL string) *PaymentUsecase {
	return &PaymentUsecase{
		tx:          tx,
		orders:      orders,
		gateway:     gateway,
		callbackURL: strings.TrimRight(frontendURL, "/") + "/payment/callback",
	}
}

type PaymentInitInput struct {
	Email   string
	Amount  decimal.Decimal
	OrderID int64
}

func (u *PaymentUsecase) Methods() []PaymentMethodInfo { return u.gateway.Methods() }

func (u *PaymentUsecase) Banks() []Bank { return u.gateway.Banks() }

// 金額はナイラで受け取りコボ（×100）で渡す。注文の持ち主だけが合計と同額で開始できる
func (u *PaymentUsecase) Initialize(ctx context.Context, actor Actor, in PaymentInitInput) (PaymentInitResult, error) {
	if actor.UserID <= 0 {
		return PaymentInitResult{}, unauthorized("unauthorized")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Amount.IsZero() || in.OrderID <= 0 {
		return PaymentInitResult{}, badRequest("Email, amount, and orderId are required")
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return PaymentInitResult{}, badRequest("Invalid email format")
	}
	if !in.Amount.IsPositive() {
		return PaymentInitResult{}, badRequest("Amount must be a positive number")
	}

	o, err := u.orders.FindByID(ctx, in.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return PaymentInitResult{}, notFound("Order not found")
	}
	if err != nil {
		return PaymentInitResult{}, dbError(err)
	}
	if err := checkPayable(actor, o); err != nil {
		return PaymentInitResult{}, err
	}

	kobo := in.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if kobo != o.TotalAmount*100 {
		return PaymentInitResult{}, badRequest("Amount does not match order total")
	}

	res, err := u.gateway.Initialize(ctx, PaymentInitRequest{
		Email:       email,
		AmountKobo:  kobo,
		OrderID:     o.ID,
		CallbackURL: u.callbackURL,
	})
	if err != nil {
		return PaymentInitResult{}, &HTTPError{Status: http.StatusInternalServerError, Message: "Payment initialization failed", Err: err}
	}

	pay := o.Payment
	pay.Reference = res.Reference
	if err := u.orders.UpdatePayment(ctx, o.ID, pay); err != nil {
		return PaymentInitResult{}, dbError(err)
	}
	return res, nil
}

// 成功したら注文の支払いを完了にし、pendingならconfirmedへ進める
func (u *PaymentUsecase) Verify(ctx context.Context, actor Actor, reference string) (PaymentVerifyResult, error) {
	if actor.UserID <= 0 {
		return PaymentVerifyResult{}, unauthorized("unauthorized")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return PaymentVerifyResult{}, badRequest("Payment reference is required")
	}

	// 他人の注文に紐づく参照番号はゲートウェイに問い合わせる前に弾く
	o, err := u.orders.FindByPaymentReference(ctx, reference)
	switch {
	case err == nil:
		if !actor.Owns(o.UserID) {
			return PaymentVerifyResult{}, forbidden("Access denied")
		}
	case !errors.Is(err, repo.ErrNotFound):
		return PaymentVerifyResult{}, dbError(err)
	}

	res, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		return PaymentVerifyResult{}, &HTTPError{Status: http.StatusInternalServerError, Message: "Payment verification failed", Err: err}
	}
	if res.Status != "success" {
		return res, nil
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPaymentReference(ctx, reference)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !actor.Owns(o.UserID) {
			return forbidden("Access denied")
		}
		if o.Payment.Status == model.PaymentStatusCompleted {
			return nil
		}
		if o.Status == model.OrderStatusCancelled {
			return badRequest("Cannot pay for a cancelled order")
		}

		p := o.Payment
		p.Status = model.PaymentStatusCompleted
		p.TransactionID = res.TransactionID
		if err := r.Orders().UpdatePayment(ctx, o.ID, p); err != nil {
			return err
		}

		prev := o.Status
		if o.Status == model.OrderStatusPending {
			if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed, nil); err != nil {
				return err
			}
			o.Status = model.OrderStatusConfirmed
		}

		ev, err := newOutboxEvent(model.TopicPaymentVerified, orderEvent(o, prev, actor.UserID))
		if err != nil {
			return err
		}
		return r.Outbox().Create(ctx, ev)
	})
	if err != nil {
		return PaymentVerifyResult{}, passOrDB(err)
	}
	return res, nil
}

func checkPayable(actor Actor, o model.Order) error {
	if !actor.Owns(o.UserID) {
		return forbidden("Access denied")
	}
	if o.Status == model.OrderStatusCancelled {
		return badRequest("Cannot pay for a cancelled order")
	}
	if o.Payment.Status == model.PaymentStatusCompleted {
		return badRequest("Order is already paid")
	}
	return nil
}
