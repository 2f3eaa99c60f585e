package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
)

// ErrPermanent marks a handler failure that redelivery cannot fix.
var ErrPermanent = errors.New("events: permanent failure")

// Permanent wraps err so the consumer rejects the message instead of requeueing it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// HandlerFunc applies one decoded event.
type HandlerFunc func(ctx context.Context, evt application.UserEvent) error

// Consumer drains a delivery channel. Undecodable messages and permanent handler
// failures are rejected without requeue, so a dead-letter exchange on the queue
// receives them. Other handler failures are requeued after RequeueDelay.
type Consumer struct {
	Handle         HandlerFunc
	Logger         *logrus.Logger
	HandlerTimeout time.Duration
	RequeueDelay   time.Duration
}

// Run returns when msgs is closed or ctx is done.
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	var evt application.UserEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil || evt.Type == "" || evt.UserID == 0 {
		c.Logger.WithError(err).Warn("bad user event message")
		_ = msg.Nack(false, false)
		return
	}

	timeout := c.HandlerTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.Handle(hctx, evt)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	log := c.Logger.WithError(err).WithFields(logrus.Fields{"user_id": evt.UserID, "type": evt.Type})
	if errors.Is(err, ErrPermanent) {
		log.Error("user event rejected")
		_ = msg.Nack(false, false)
		return
	}
	log.Warn("user event handling failed, requeueing")
	if c.RequeueDelay > 0 {
		t := time.NewTimer(c.RequeueDelay)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()
	}
	_ = msg.Nack(false, true)
}
