package messaging

import (
	"context"
	"time"

	"naijashop/internal/repository"

	"github.com/labstack/gommon/log"
)

const defaultBatchSize = 50

// Relay はoutboxの未送信イベントを定期的にPublisherへ流す。
// 失敗したイベントはattemptsを増やして次回また送る（順序を保つためバッチはそこで止める）。
type Relay struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *log.Logger
	now       func() time.Time
}

func NewRelay(outbox repository.OutboxRepository, publisher Publisher, interval time.Duration, logger *log.Logger) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = log.New("outbox")
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// ctxがキャンセルされるまで戻らない
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.logger.Errorf("outbox flush: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// 1バッチ分を送り、送れた件数を返す
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.outbox.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range events {
		msg := Message{ID: ev.EventID, Topic: ev.Topic, Payload: []byte(ev.Payload)}
		if err := r.publisher.Publish(ctx, msg); err != nil {
			r.logger.Warnj(log.JSON{"msg": "publish failed", "event_id": ev.EventID, "topic": ev.Topic, "attempts": ev.Attempts + 1, "error": err.Error()})
			if mErr := r.outbox.MarkFailed(ctx, ev.ID, err.Error()); mErr != nil {
				return sent, mErr
			}
			return sent, nil
		}
		if err := r.outbox.MarkPublished(ctx, ev.ID, r.now()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
