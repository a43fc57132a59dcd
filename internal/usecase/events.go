package usecase

import (
	"encoding/json"
	"time"

	"naijashop/internal/domain/model"

	"github.com/google/uuid"
)

type OrderEvent struct {
	OrderID     int64             `json:"order_id"`
	UserID      int64             `json:"user_id"`
	Status      model.OrderStatus `json:"status"`
	PrevStatus  model.OrderStatus `json:"prev_status,omitempty"`
	TotalAmount int64             `json:"total_amount"`
	ActorID     int64             `json:"actor_id,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// outboxに積むイベントを作る（保存はtx内で行う）
func newOutboxEvent(topic string, payload any) (*model.OutboxEvent, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &model.OutboxEvent{
		EventID:   uuid.NewString(),
		Topic:     topic,
		Payload:   string(b),
		CreatedAt: time.Now(),
	}, nil
}

func orderEvent(o model.Order, prev model.OrderStatus, actorID int64) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		PrevStatus:  prev,
		TotalAmount: o.TotalAmount,
		ActorID:     actorID,
		OccurredAt:  time.Now(),
	}
}
