package interfaces

import (
	"context"
	"time"
)

// Dispatch actions carried on the stage queues. The initial kitchen
// dispatch is placed by the workflow driver itself; this service only
// publishes delivery handoffs and retry requeues.
const (
	ActionCocinarRetry  = "COCINAR_RETRY"
	ActionDelivery      = "DELIVERY"
	ActionDeliveryRetry = "DELIVERY_RETRY"
)

// DispatchMessage is the unit of work placed on a stage queue for the
// kitchen or delivery crews. Delivery is at-least-once; consumers must
// tolerate duplicates.
type DispatchMessage struct {
	OrderID    string     `json:"order_id"`
	LocalID    string     `json:"local_id"`
	Action     string     `json:"action"`
	RetryCount int        `json:"retry_count,omitempty"`
	Details    StageInput `json:"details"`
}

// CompletionEvent is the single terminal notification emitted when an
// order reaches the received stage.
type CompletionEvent struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type DispatchPublisher interface {
	EnqueueKitchen(ctx context.Context, msg DispatchMessage) error
	EnqueueDelivery(ctx context.Context, msg DispatchMessage) error
}

type EventPublisher interface {
	// PublishCompletion is best-effort; callers log failures and move on.
	PublishCompletion(ctx context.Context, event CompletionEvent) error
}

type EventConsumer interface {
	ConsumeCompletions(ctx context.Context, handler CompletionHandler) error
}

type CompletionHandler func(ctx context.Context, body []byte) error
