package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-ddd-user-accounts/config"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/events"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
)

// event_worker consumes user lifecycle events and keeps the search index in step.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env)

	if !cfg.EventsEnabled {
		logger.Info("EVENTS_ENABLED=false; event worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQUserEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.Fatalf("elasticsearch client: %v", err)
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := helpers.PingES(initCtx, es); err != nil {
		cancel()
		logger.Fatalf("elasticsearch unreachable: %v", err)
	}
	index := search.NewUserIndex(es, cfg.ESUsersIndex)
	err = index.EnsureIndex(initCtx)
	cancel()
	if err != nil {
		logger.Fatalf("ensure index %s: %v", cfg.ESUsersIndex, err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQUserEventsQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQUserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	consumer := &events.Consumer{
		Handle:         index.Apply,
		Logger:         logger,
		HandlerTimeout: 15 * time.Second,
		RequeueDelay:   2 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		consumer.Run(ctx, msgs)
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQUserEventsQueue).Info("event worker listening")
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case <-done:
		logger.Warn("delivery channel closed")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
