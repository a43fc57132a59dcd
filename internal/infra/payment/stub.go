package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"naijashop/internal/domain/model"
	"naijashop/internal/usecase"

	"github.com/google/uuid"
)

const (
	mockCheckoutURL    = "https://checkout.paystack.com/mock-payment"
	defaultVerifyKobo  = 50000
	verifiedGatewayMsg = "Successful"
)

// Stub はPaystackを模したゲートウェイ。外部には一切通信しない。
// Initializeで発行した参照番号の金額を覚えておき、Verifyで返す。
type Stub struct {
	mu      sync.Mutex
	amounts map[string]int64
	now     func() time.Time
}

var _ usecase.PaymentGateway = (*Stub)(nil)

func NewStub() *Stub {
	return &Stub{amounts: map[string]int64{}, now: time.Now}
}

func (s *Stub) Methods() []usecase.PaymentMethodInfo {
	return []usecase.PaymentMethodInfo{
		{ID: string(model.PaymentMethodCard), Name: "Debit/Credit Card", Description: "Secure payment with Paystack", Icon: "credit-card", Enabled: true},
		{ID: string(model.PaymentMethodBankTransfer), Name: "Bank Transfer", Description: "Transfer to our account", Icon: "bank", Enabled: true},
		{ID: string(model.PaymentMethodCashOnDelivery), Name: "Cash on Delivery", Description: "Pay when you receive", Icon: "cash", Enabled: true},
	}
}

func (s *Stub) Banks() []usecase.Bank {
	return []usecase.Bank{
		{Name: "Access Bank", Code: "044"},
		{Name: "Guaranty Trust Bank", Code: "058"},
		{Name: "First Bank of Nigeria", Code: "011"},
		{Name: "United Bank for Africa", Code: "033"},
		{Name: "Zenith Bank", Code: "057"},
		{Name: "Fidelity Bank", Code: "070"},
		{Name: "Union Bank of Nigeria", Code: "032"},
		{Name: "Sterling Bank", Code: "232"},
		{Name: "Stanbic IBTC Bank", Code: "221"},
		{Name: "Ecobank Nigeria", Code: "050"},
	}
}

// reference = ref_<orderId>_<unixmillis>
func (s *Stub) Initialize(ctx context.Context, req usecase.PaymentInitRequest) (usecase.PaymentInitResult, error) {
	if err := ctx.Err(); err != nil {
		return usecase.PaymentInitResult{}, err
	}
	ms := s.now().UnixMilli()
	ref := fmt.Sprintf("ref_%d_%d", req.OrderID, ms)

	s.mu.Lock()
	s.amounts[ref] = req.AmountKobo
	s.mu.Unlock()

	return usecase.PaymentInitResult{
		AuthorizationURL: mockCheckoutURL,
		AccessCode:       "mock_access_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Reference:        ref,
		AmountKobo:       req.AmountKobo,
	}, nil
}

// 常に成功を返す
func (s *Stub) Verify(ctx context.Context, reference string) (usecase.PaymentVerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return usecase.PaymentVerifyResult{}, err
	}

	s.mu.Lock()
	amount, ok := s.amounts[reference]
	s.mu.Unlock()
	if !ok {
		amount = defaultVerifyKobo
	}

	return usecase.PaymentVerifyResult{
		Status:          "success",
		Reference:       reference,
		AmountKobo:      amount,
		GatewayResponse: verifiedGatewayMsg,
		Channel:         "card",
		Currency:        model.CurrencyNGN,
		TransactionID:   "txn_" + uuid.NewString(),
		PaidAt:          s.now().UTC(),
	}, nil
}
