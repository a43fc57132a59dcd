package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"naijashop/internal/config"
	"naijashop/internal/infra/cache"
	"naijashop/internal/infra/db"
	"naijashop/internal/infra/messaging"
	"naijashop/internal/infra/payment"
	"naijashop/internal/server"
	"naijashop/internal/usecase"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := log.New("api")
	logger.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`)

	if err := run(logger); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//REDIS_URLがあれば商品詳細をキャッシュ
	var productCache usecase.ProductCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		productCache = cache.NewProductCache(rdb, cfg.ProductCacheTTL, log.New("cache"))
	}

	//RABBITMQ_URLが無ければイベントはログに出すだけ
	var publisher messaging.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := messaging.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			return err
		}
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL not set, events are only logged")
		publisher = messaging.NewLogPublisher(log.New("events"))
	}
	defer publisher.Close()

	app := server.NewApp(cfg, gormDB, server.Options{
		Cache:   productCache,
		Gateway: payment.NewStub(),
	})
	relay := messaging.NewRelay(app.Outbox, publisher, cfg.OutboxPoll, log.New("outbox"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relay.Run(gctx) })
	g.Go(func() error { return server.Start(gctx, app.Echo, cfg.Addr()) })

	return g.Wait()
}
