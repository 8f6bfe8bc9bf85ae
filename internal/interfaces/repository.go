package interfaces

import (
	"context"
	"time"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
)

type OrderRepository interface {
	Find(ctx context.Context, localID, orderID string) (*domain.Order, error)
	// UpdateStatus sets the order status unconditionally by composite key.
	// Returns domain.ErrOrderNotFound when no row matches.
	UpdateStatus(ctx context.Context, localID, orderID string, status domain.Stage, employee string) error
}

type HistoryRepository interface {
	// Append inserts a new ledger entry and fills in its Seq.
	Append(ctx context.Context, entry *domain.StateHistoryEntry) error
	// LatestOpen returns the most recently opened entry (highest seq) that
	// has not been closed yet. Returns domain.ErrNoOpenEntry when the
	// order has no open entry.
	LatestOpen(ctx context.Context, orderID string) (*domain.StateHistoryEntry, error)
	// Close sets the end time of the entry identified by (orderID, seq).
	Close(ctx context.Context, orderID string, seq int64, endedAt time.Time) error
	ListByOrder(ctx context.Context, orderID string) ([]*domain.StateHistoryEntry, error)
}

type InventoryRepository interface {
	// Decrement applies a conditional stock decrement. It returns
	// domain.ErrInsufficientStock when the current quantity is below qty
	// and domain.ErrProductNotFound when the product does not exist;
	// stock is left untouched in both cases.
	Decrement(ctx context.Context, localID, productID string, qty int) error
	// DecrementAll applies every decrement or none of them. A shortage or
	// missing product anywhere in items rolls back the whole batch, so a
	// failed attempt can be retried without leaking stock.
	DecrementAll(ctx context.Context, items []domain.OrderItem) error
}
