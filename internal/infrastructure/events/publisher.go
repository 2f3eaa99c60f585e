package events

import (
	"context"

	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
)

// JSONPublisher is satisfied by *helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Publisher sends user events to the user events queue.
type Publisher struct {
	pub JSONPublisher
}

func NewPublisher(pub JSONPublisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Publish(ctx context.Context, evt application.UserEvent) error {
	return p.pub.PublishJSON(ctx, evt)
}

var _ application.EventPublisher = (*Publisher)(nil)
