/**
 * @description
 * Adapter that binds the generic RabbitMQ producer to the booking event
 * contract used by the lifecycle controller.
 */

package app

import (
	"context"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

// Producer is the publishing capability the notifier needs, satisfied by
// pkg/rabbitmq.EventProducer.
type Producer interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Notifier publishes booking events on a fixed topic exchange.
type Notifier struct {
	producer Producer
	exchange string
}

// NewNotifier creates a notifier bound to the given exchange.
func NewNotifier(producer Producer, exchange string) *Notifier {
	return &Notifier{producer: producer, exchange: exchange}
}

// PublishBookingEvent sends one booking event. Fire-and-forget semantics are
// enforced by callers: failures here are logged, never propagated upward.
func (n *Notifier) PublishBookingEvent(ctx context.Context, routingKey string, event domain.BookingEvent) error {
	return n.producer.Publish(ctx, n.exchange, routingKey, event)
}
