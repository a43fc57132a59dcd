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

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	cache  ProductCache
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, items repo.OrderItemRepository, cache ProductCache) *AdminOrderUsecase {
	if cache == nil {
		cache = noopProductCache{}
	}
	return &AdminOrderUsecase{tx: tx, orders: orders, items: items, cache: cache}
}

// 注文一覧（status/user/期間で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	page, limit, err := normalizePage(f.Page, f.Limit)
	if err != nil {
		return OrderListOutput{}, err
	}
	f.Page, f.Limit = page, limit
	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return OrderListOutput{}, badRequest("Invalid status value")
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return OrderListOutput{}, badRequest("from must be before to")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return OrderListOutput{}, dbError(err)
	}
	outs, err := attachItems(ctx, u.items, orders)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Pagination: newPagination(page, limit, total)}, nil
}

// 任意の状態へ変更できる。cancelledへは在庫戻し、cancelledからは在庫を取り直す
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID int64, rawStatus string) (OrderOutput, error) {
	if !actor.IsAdmin() {
		return OrderOutput{}, forbidden("Access denied: Admin access required")
	}
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
	}
	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return OrderOutput{}, badRequest("Invalid status value")
	}

	var (
		out   OrderOutput
		moved []model.OrderItem
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Order not found")
		}
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ForOrder(ctx, orderID)
		if err != nil {
			return err
		}

		// すでに同じなら何もしない
		if o.Status == newStatus {
			out = toOrderOutput(o, items)
			return nil
		}

		switch {
		case newStatus == model.OrderStatusCancelled:
			if err := restoreStock(ctx, r, items); err != nil {
				return err
			}
			moved = items
		case o.Status == model.OrderStatusCancelled:
			for _, it := range items {
				ok, err := r.Inventory().Reserve(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return badRequest(fmt.Sprintf("Insufficient stock to reopen order for %s", it.Title))
				}
			}
			moved = items
		}

		var deliveredAt *time.Time
		if newStatus == model.OrderStatusDelivered {
			now := time.Now()
			deliveredAt = &now
			o.DeliveredAt = &now
		}

		prev := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, deliveredAt); err != nil {
			return err
		}
		o.Status = newStatus

		entry := model.NewAuditLog(actor.UserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			model.Fields{"status": prev}, model.Fields{"status": newStatus})
		if err := r.AuditLogs().Create(ctx, entry); err != nil {
			return err
		}

		ev, err := newOutboxEvent(model.TopicOrderStatusChanged, orderEvent(o, prev, actor.UserID))
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
	invalidateStock(ctx, u.cache, moved)
	return out, nil
}

// 未出荷の注文を消す場合は在庫を戻す
func (u *AdminOrderUsecase) Delete(ctx context.Context, actor Actor, orderID int64) error {
	if !actor.IsAdmin() {
		return forbidden("Access denied: Admin access required")
	}
	if orderID <= 0 {
		return badRequest("invalid id")
	}

	var moved []model.OrderItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Order not found")
		}
		if err != nil {
			return err
		}

		if o.Status.Cancellable() {
			items, err := r.OrderItems().ForOrder(ctx, orderID)
			if err != nil {
				return err
			}
			if err := restoreStock(ctx, r, items); err != nil {
				return err
			}
			moved = items
		}

		if err := r.OrderItems().DeleteForOrder(ctx, orderID); err != nil {
			return err
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return err
		}

		return r.AuditLogs().Create(ctx, model.NewAuditLog(actor.UserID, model.AuditActionDeleteOrder, model.AuditResourceOrder, orderID,
			model.Fields{"status": o.Status, "total_amount": o.TotalAmount}, nil))
	})
	if err != nil {
		return passOrDB(err)
	}
	invalidateStock(ctx, u.cache, moved)
	return nil
}
