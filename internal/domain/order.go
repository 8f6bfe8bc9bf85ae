package domain

import (
	"errors"
	"time"
)

// DefaultLocalID is used when a payload does not carry a branch identifier.
const DefaultLocalID = "default"

// Order represents a food order moving through the fulfillment pipeline.
// Orders are created by the intake service and never deleted here; the
// fulfillment core only advances their status.
type Order struct {
	LocalID          string
	OrderID          string
	Status           Stage
	Items            []OrderItem
	AssignedEmployee string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID string
	LocalID   string
	Quantity  int
}

// InventoryRecord is the stock level of one product at one branch.
// Quantity never goes below zero; the decrement is conditional at the
// storage layer.
type InventoryRecord struct {
	LocalID   string
	ProductID string
	Quantity  int
}

var (
	ErrMissingOrderID    = errors.New("order_id is required")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoOpenEntry       = errors.New("no open history entry")
	ErrRetryLimit        = errors.New("retry limit exceeded")
)

// StateHistoryEntry is one interval of the append-only fulfillment ledger.
// The entry with a nil EndedAt is the order's current stage; it is closed
// by the next handler that fires, never by the one that opened it.
type StateHistoryEntry struct {
	Seq        int64
	OrderID    string
	Stage      Stage
	StartedAt  time.Time
	EndedAt    *time.Time
	EmployeeID string
	TaskToken  string
	Details    string
}

// Open reports whether the entry still represents the current stage.
func (e *StateHistoryEntry) Open() bool {
	return e.EndedAt == nil
}
