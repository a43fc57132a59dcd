package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"
)

// 配達予定は注文から7日後
const estimatedDeliveryAfter = 7 * 24 * time.Hour

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	addresses repo.AddressRepository
	cache     ProductCache
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	addresses repo.AddressRepository,
	cache ProductCache,
) *OrderUsecase {
	if cache == nil {
		cache = noopProductCache{}
	}
	return &OrderUsecase{tx: tx, orders: orders, items: items, addresses: addresses, cache: cache}
}

// Priceはクライアントが見ていた価格。送られてきた場合はカタログ価格と一致が必要
type OrderLineInput struct {
	ProductID int64
	Quantity  int64
	Price     *int64
}

type CreateOrderInput struct {
	Items          []OrderLineInput
	Shipping       *AddressInput
	AddressID      int64
	PaymentMethod  string
	IdempotencyKey string
}

type OrderOutput struct {
	model.Order
	FormattedTotal string            `json:"formatted_total"`
	Items          []model.OrderItem `json:"items"`
}

type OrderListOutput struct {
	Items      []OrderOutput `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// 在庫減算・注文作成・明細スナップショット・カートクリア・イベントを1つのtxで行う
func (u *OrderUsecase) Create(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized("unauthorized")
	}
	lines, err := mergeOrderLines(in.Items)
	if err != nil {
		return OrderOutput{}, err
	}
	shipping, err := u.resolveShipping(ctx, userID, in)
	if err != nil {
		return OrderOutput{}, err
	}
	method, ok := model.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return OrderOutput{}, badRequest("invalid payment method")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, badRequest("invalid idempotency key")
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return err
			}
			if found {
				items, err := r.OrderItems().ForOrder(ctx, existing.ID)
				if err != nil {
					return err
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		now := time.Now()
		orderItems := make([]model.OrderItem, 0, len(lines))
		var total int64

		for _, line := range lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
				return badRequest(fmt.Sprintf("Product %d is not available", line.ProductID))
			}
			if err != nil {
				return err
			}

			//価格はサーバー側で再計算する
			price := p.DiscountedPrice(now)
			if line.Price != nil && *line.Price != price {
				return badRequest("price mismatch")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().Reserve(ctx, p.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return badRequest(fmt.Sprintf("Insufficient stock for %s", p.Name))
			}

			//スナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID: p.ID,
				Title:     p.Name,
				UnitPrice: price,
				Quantity:  line.Quantity,
				Thumbnail: p.Image,
				CreatedAt: now,
			})
			total += price * line.Quantity
		}

		eta := now.Add(estimatedDeliveryAfter)
		order := model.Order{
			UserID:              userID,
			Status:              model.OrderStatusPending,
			TotalAmount:         total,
			Shipping:            shipping,
			Payment:             model.PaymentInfo{Method: method, Status: model.PaymentStatusPending},
			EstimatedDeliveryAt: &eta,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}
		if err := r.OrderItems().Snapshot(ctx, order.ID, orderItems); err != nil {
			return err
		}
		if err := r.Cart().Clear(ctx, userID); err != nil {
			return err
		}

		ev, err := newOutboxEvent(model.TopicOrderCreated, orderEvent(order, "", userID))
		if err != nil {
			return err
		}
		if err := r.Outbox().Create(ctx, ev); err != nil {
			return err
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})

	//同時に同じキーで作成された場合は先に入った注文を返す
	if errors.Is(err, repo.ErrDuplicate) && key != "" {
		existing, found, ferr := u.orders.FindByIdempotencyKey(ctx, userID, key)
		if ferr == nil && found {
			return u.withItems(ctx, existing)
		}
	}
	if err != nil {
		return OrderOutput{}, passOrDB(err)
	}
	invalidateStock(ctx, u.cache, out.Items)
	return out, nil
}

func (u *OrderUsecase) ListMine(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, unauthorized("unauthorized")
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return OrderListOutput{}, err
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, dbError(err)
	}
	outs, err := attachItems(ctx, u.items, orders)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Pagination: newPagination(page, limit, total)}, nil
}

// 本人か管理者のみ
func (u *OrderUsecase) Get(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFound("Order not found")
	}
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	if !actor.Owns(o.UserID) {
		return OrderOutput{}, forbidden("Access denied")
	}
	return u.withItems(ctx, o)
}

// 本人のみ。pending/confirmed/processing の間だけキャンセルでき、在庫を戻す
func (u *OrderUsecase) Cancel(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Order not found")
		}
		if err != nil {
			return err
		}
		if o.UserID != actor.UserID {
			return forbidden("Access denied")
		}
		if !o.Status.Cancellable() {
			return badRequest(fmt.Sprintf("Cannot cancel order with status: %s", o.Status))
		}

		items, err := r.OrderItems().ForOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := restoreStock(ctx, r, items); err != nil {
			return err
		}

		prev := o.Status
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCancelled, nil); err != nil {
			return err
		}
		o.Status = model.OrderStatusCancelled

		ev, err := newOutboxEvent(model.TopicOrderCancelled, orderEvent(o, prev, actor.UserID))
		if err != nil {
			return err
		}
		if err := r.Outbox().Create(ctx, ev); err != nil {
			return err
		}

		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, passOrDB(err)
	}
	invalidateStock(ctx, u.cache, out.Items)
	return out, nil
}

func (u *OrderUsecase) resolveShipping(ctx context.Context, userID int64, in CreateOrderInput) (model.ShippingAddress, error) {
	if in.AddressID > 0 {
		a, err := u.addresses.FindForUser(ctx, userID, in.AddressID)
		if err != nil {
			return model.ShippingAddress{}, addressErr(err)
		}
		return a.ToShipping(), nil
	}
	if in.Shipping == nil {
		return model.ShippingAddress{}, badRequest("Shipping address is required")
	}
	a, err := normalizeAddress(*in.Shipping)
	if err != nil {
		return model.ShippingAddress{}, badRequest("Complete shipping address (street, city, state) is required")
	}
	return a, nil
}

func (u *OrderUsecase) withItems(ctx context.Context, o model.Order) (OrderOutput, error) {
	items, err := u.items.ForOrder(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, dbError(err)
	}
	return toOrderOutput(o, items), nil
}

// 同じ商品が複数行あれば数量を合算する
func mergeOrderLines(in []OrderLineInput) ([]OrderLineInput, error) {
	if len(in) == 0 {
		return nil, badRequest("Order items are required")
	}
	out := make([]OrderLineInput, 0, len(in))
	index := make(map[int64]int, len(in))
	for _, line := range in {
		if line.ProductID <= 0 {
			return nil, badRequest("invalid product id")
		}
		if line.Quantity < 1 {
			return nil, badRequest("Quantity must be at least 1")
		}
		if i, ok := index[line.ProductID]; ok {
			if line.Price != nil && out[i].Price != nil && *line.Price != *out[i].Price {
				return nil, badRequest("price mismatch")
			}
			out[i].Quantity += line.Quantity
			if out[i].Price == nil {
				out[i].Price = line.Price
			}
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, nil
}

func restoreStock(ctx context.Context, r repo.TxRepos, items []model.OrderItem) error {
	for _, it := range items {
		if err := r.Inventory().Release(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// 在庫が動いた商品のキャッシュはコミット後に捨てる
func invalidateStock(ctx context.Context, cache ProductCache, items []model.OrderItem) {
	for _, it := range items {
		cache.Invalidate(ctx, it.ProductID)
	}
}

func attachItems(ctx context.Context, itemsRepo repo.OrderItemRepository, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := itemsRepo.ForOrders(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, byOrder[o.ID]))
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	if items == nil {
		items = []model.OrderItem{}
	}
	return OrderOutput{
		Order:          o,
		FormattedTotal: model.FormatNaira(o.TotalAmount),
		Items:          items,
	}
}
