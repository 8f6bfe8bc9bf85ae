package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

const (
	kitchenQueue   = "cocina_dispatch"
	deliveryQueue  = "delivery_dispatch"
	eventsExchange = "pedidos_events"
)

type Publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) *Publisher {
	return &Publisher{conn: conn}
}

var _ interfaces.DispatchPublisher = (*Publisher)(nil)
var _ interfaces.EventPublisher = (*Publisher)(nil)

func (p *Publisher) EnqueueKitchen(ctx context.Context, msg interfaces.DispatchMessage) error {
	return p.enqueue(ctx, kitchenQueue, msg)
}

func (p *Publisher) EnqueueDelivery(ctx context.Context, msg interfaces.DispatchMessage) error {
	return p.enqueue(ctx, deliveryQueue, msg)
}

// enqueue publishes a work item straight to a durable stage queue. The
// crews' workers consume these outside the fulfillment core.
func (p *Publisher) enqueue(ctx context.Context, queue string, msg interfaces.DispatchMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.Publish("", queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	return nil
}

func (p *Publisher) PublishCompletion(ctx context.Context, event interfaces.CompletionEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(eventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.Publish(eventsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
