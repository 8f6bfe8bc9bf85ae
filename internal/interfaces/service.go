package interfaces

import (
	"context"
	"time"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
)

// StageRequest is what the workflow driver sends to every stage handler.
// TaskToken is present only for long-running stages; referencing it later
// resumes the paused workflow execution.
type StageRequest struct {
	TaskToken string     `json:"taskToken,omitempty"`
	Input     StageInput `json:"input"`
}

// StageInput is the order context carried through the whole pipeline.
type StageInput struct {
	OrderID    string      `json:"order_id"`
	LocalID    string      `json:"local_id,omitempty"`
	EmployeeID string      `json:"empleado_id,omitempty"`
	RetryCount int         `json:"retry_count,omitempty"`
	Items      []StageItem `json:"productos,omitempty"`
}

type StageItem struct {
	ProductID string `json:"producto_id"`
	LocalID   string `json:"local_id,omitempty"`
	Quantity  int    `json:"cantidad"`
}

// StageResult is returned to the driver; Status is the machine-readable
// tag its branching logic switches on.
type StageResult struct {
	Status     string `json:"status"`
	OrderID    string `json:"order_id"`
	EmployeeID string `json:"empleado_id,omitempty"`
	RetryCount int    `json:"retry_count,omitempty"`
}

// FulfillmentService is the order fulfillment state machine. Each method
// is one callback the external workflow driver sequences; invocations for
// the same order are serialized by the driver.
type FulfillmentService interface {
	EnterKitchen(ctx context.Context, req StageRequest) (*StageResult, error)
	CompleteKitchen(ctx context.Context, req StageRequest) (*StageResult, error)
	Package(ctx context.Context, req StageRequest) (*StageResult, error)
	StartDelivery(ctx context.Context, req StageRequest) (*StageResult, error)
	CompleteDelivery(ctx context.Context, req StageRequest) (*StageResult, error)
	RetryKitchen(ctx context.Context, req StageRequest) (*StageResult, error)
	RetryDelivery(ctx context.Context, req StageRequest) (*StageResult, error)
}

type TrackingService interface {
	GetOrderStatus(ctx context.Context, localID, orderID string) (*TrackingOrderResponse, error)
	GetOrderHistory(ctx context.Context, localID, orderID string) ([]*domain.StateHistoryEntry, error)
}

type TrackingOrderResponse struct {
	OrderID          string
	LocalID          string
	CurrentStatus    domain.Stage
	AssignedEmployee string
	UpdatedAt        time.Time
}
