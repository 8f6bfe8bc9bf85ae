package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/fsm"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

// Policy holds the configurable decisions of the fulfillment core.
type Policy struct {
	// BlockOnShortage aborts the kitchen-complete transition when a stock
	// decrement fails instead of logging and proceeding.
	BlockOnShortage bool
	// MaxRetries caps requeue attempts. Zero means the ceiling is owned
	// by the workflow driver.
	MaxRetries int
}

// Service is the order fulfillment state machine. The external workflow
// driver sequences its methods and serializes invocations per order; the
// service itself is stateless between calls.
type Service struct {
	orders    interfaces.OrderRepository
	history   interfaces.HistoryRepository
	inventory interfaces.InventoryRepository
	dispatch  interfaces.DispatchPublisher
	events    interfaces.EventPublisher
	stages    *fsm.StageMachine
	logger    logger.Logger
	policy    Policy
	now       func() time.Time
}

func NewService(
	orders interfaces.OrderRepository,
	history interfaces.HistoryRepository,
	inventory interfaces.InventoryRepository,
	dispatch interfaces.DispatchPublisher,
	events interfaces.EventPublisher,
	lgr logger.Logger,
	policy Policy,
) *Service {
	return &Service{
		orders:    orders,
		history:   history,
		inventory: inventory,
		dispatch:  dispatch,
		events:    events,
		stages:    fsm.NewStageMachine(),
		logger:    lgr,
		policy:    policy,
		now:       time.Now,
	}
}

var _ interfaces.FulfillmentService = (*Service)(nil)

// EnterKitchen opens the kitchen interval of the ledger and marks the
// order as cooking.
func (s *Service) EnterKitchen(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeeKitchen)
	if err != nil {
		return nil, err
	}
	s.observe(ctx, in, fsm.EventKitchenStart)

	now := s.now()
	if err := s.closePrevious(ctx, in.OrderID, now); err != nil {
		return nil, err
	}
	if err := s.openEntry(ctx, in, domain.StageInKitchen, req.TaskToken, now); err != nil {
		return nil, err
	}
	if err := s.markStatus(ctx, in, domain.StageInKitchen); err != nil {
		return nil, err
	}

	s.logger.Info("kitchen_entered", "Order entered the kitchen", in.OrderID, map[string]interface{}{
		"employee": in.EmployeeID,
	})
	return &interfaces.StageResult{Status: domain.StatusEnCocina, OrderID: in.OrderID, EmployeeID: in.EmployeeID}, nil
}

// CompleteKitchen decrements stock for every line item, closes the
// cooking-entered interval and opens the cooking-done one. The order stays
// in the kitchen stage until packaging picks it up.
func (s *Service) CompleteKitchen(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeeKitchen)
	if err != nil {
		return nil, err
	}
	s.observe(ctx, in, fsm.EventKitchenFinish)

	// Inventory goes first so a blocking shortfall aborts before any
	// ledger write.
	if err := s.decrementItems(ctx, in); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.closePrevious(ctx, in.OrderID, now); err != nil {
		return nil, err
	}
	if err := s.openEntry(ctx, in, domain.StageInKitchen, req.TaskToken, now); err != nil {
		return nil, err
	}
	if err := s.markStatus(ctx, in, domain.StageInKitchen); err != nil {
		return nil, err
	}

	s.logger.Info("kitchen_completed", "Kitchen work finished", in.OrderID, map[string]interface{}{
		"employee": in.EmployeeID,
		"items":    len(in.Items),
	})
	return &interfaces.StageResult{Status: domain.StatusCocinaTerminada, OrderID: in.OrderID, EmployeeID: in.EmployeeID}, nil
}

// Package moves the order into the packaging stage.
func (s *Service) Package(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeePackaging)
	if err != nil {
		return nil, err
	}
	s.observe(ctx, in, fsm.EventPack)

	now := s.now()
	if err := s.closePrevious(ctx, in.OrderID, now); err != nil {
		return nil, err
	}
	if err := s.openEntry(ctx, in, domain.StagePackaging, req.TaskToken, now); err != nil {
		return nil, err
	}
	if err := s.markStatus(ctx, in, domain.StagePackaging); err != nil {
		return nil, err
	}

	s.logger.Info("packaging_started", "Order is being packed", in.OrderID, map[string]interface{}{
		"employee": in.EmployeeID,
	})
	return &interfaces.StageResult{Status: domain.StatusEmpaquetado, OrderID: in.OrderID, EmployeeID: in.EmployeeID}, nil
}

// StartDelivery marks the order out for delivery and hands the work item
// to the delivery queue. The enqueue happens before any history write: a
// dispatch that was never sent must not be recorded as sent.
func (s *Service) StartDelivery(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeeDelivery)
	if err != nil {
		return nil, err
	}
	s.observe(ctx, in, fsm.EventShip)

	if err := s.markStatus(ctx, in, domain.StageOutForDelivery); err != nil {
		return nil, err
	}

	msg := interfaces.DispatchMessage{
		OrderID: in.OrderID,
		LocalID: in.LocalID,
		Action:  interfaces.ActionDelivery,
		Details: in,
	}
	if err := s.dispatch.EnqueueDelivery(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to dispatch delivery for order %s: %w", in.OrderID, err)
	}

	now := s.now()
	if err := s.closePrevious(ctx, in.OrderID, now); err != nil {
		return nil, err
	}
	if err := s.openEntry(ctx, in, domain.StageOutForDelivery, req.TaskToken, now); err != nil {
		return nil, err
	}

	s.logger.Info("delivery_dispatched", "Order handed to the delivery queue", in.OrderID, map[string]interface{}{
		"employee": in.EmployeeID,
	})
	return &interfaces.StageResult{Status: domain.StatusDeliveryEnCurso, OrderID: in.OrderID, EmployeeID: in.EmployeeID}, nil
}

// CompleteDelivery closes the ledger with a point-in-time received entry
// and emits the single completion notification. Losing the notification
// is non-fatal; the order is already fulfilled.
func (s *Service) CompleteDelivery(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeeSystem)
	if err != nil {
		return nil, err
	}
	s.observe(ctx, in, fsm.EventDeliver)

	now := s.now()
	if err := s.closePrevious(ctx, in.OrderID, now); err != nil {
		return nil, err
	}

	ended := now
	entry := &domain.StateHistoryEntry{
		OrderID:    in.OrderID,
		Stage:      domain.StageReceived,
		StartedAt:  now,
		EndedAt:    &ended,
		EmployeeID: in.EmployeeID,
		Details:    "Pedido completado exitosamente",
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.markStatus(ctx, in, domain.StageReceived); err != nil {
		return nil, err
	}

	event := interfaces.CompletionEvent{
		OrderID:   in.OrderID,
		Timestamp: now,
		Message:   "Gracias por tu pedido",
	}
	if err := s.events.PublishCompletion(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish completion event", in.OrderID, nil, err)
	}

	s.logger.Info("order_completed", "Order fulfilled", in.OrderID, nil)
	return &interfaces.StageResult{Status: domain.StatusCompleted, OrderID: in.OrderID, EmployeeID: in.EmployeeID}, nil
}

// RetryKitchen re-dispatches a failed kitchen work item.
func (s *Service) RetryKitchen(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	return s.requeue(ctx, req, domain.StageProcessing, interfaces.ActionCocinarRetry,
		domain.StatusRetrying, s.dispatch.EnqueueKitchen, "cocina")
}

// RetryDelivery re-dispatches a failed delivery work item.
func (s *Service) RetryDelivery(ctx context.Context, req interfaces.StageRequest) (*interfaces.StageResult, error) {
	return s.requeue(ctx, req, domain.StageOutForDelivery, interfaces.ActionDeliveryRetry,
		domain.StatusRetryingDelivery, s.dispatch.EnqueueDelivery, "delivery")
}

// requeue increments the attempt counter, puts the payload back on the
// stage queue and annotates the ledger. It never touches Order.status or
// the open-entry boundary; the annotation is written pre-closed.
func (s *Service) requeue(
	ctx context.Context,
	req interfaces.StageRequest,
	stage domain.Stage,
	action, status string,
	enqueue func(context.Context, interfaces.DispatchMessage) error,
	queueName string,
) (*interfaces.StageResult, error) {
	in, err := normalize(req, domain.EmployeeSystem)
	if err != nil {
		return nil, err
	}

	count := in.RetryCount + 1
	if s.policy.MaxRetries > 0 && count > s.policy.MaxRetries {
		return nil, fmt.Errorf("%w: order %s attempt %d", domain.ErrRetryLimit, in.OrderID, count)
	}

	in.RetryCount = count
	msg := interfaces.DispatchMessage{
		OrderID:    in.OrderID,
		LocalID:    in.LocalID,
		Action:     action,
		RetryCount: count,
		Details:    in,
	}
	if err := enqueue(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to requeue order %s: %w", in.OrderID, err)
	}

	now := s.now()
	ended := now
	entry := &domain.StateHistoryEntry{
		OrderID:    in.OrderID,
		Stage:      stage,
		StartedAt:  now,
		EndedAt:    &ended,
		EmployeeID: domain.EmployeeSystemRetry,
		Details:    fmt.Sprintf("Reintento %d - Re-encolando para %s", count, queueName),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("retry_requeued", fmt.Sprintf("Attempt %d requeued to %s", count, queueName), in.OrderID, map[string]interface{}{
		"retry_count": count,
		"queue":       queueName,
	})
	return &interfaces.StageResult{Status: status, OrderID: in.OrderID, EmployeeID: in.EmployeeID, RetryCount: count}, nil
}

// decrementItems applies the conditional stock decrement for every line
// item. Under the blocking policy the batch is all-or-nothing: a shortage
// anywhere aborts the transition with stock unchanged, so a retried
// attempt never decrements twice. Otherwise each shortfall is logged and
// skipped.
func (s *Service) decrementItems(ctx context.Context, in interfaces.StageInput) error {
	items := normalizeItems(in)

	if s.policy.BlockOnShortage {
		if len(items) == 0 {
			return nil
		}
		if err := s.inventory.DecrementAll(ctx, items); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
				return fmt.Errorf("inventory shortfall for order %s: %w", in.OrderID, err)
			}
			return err
		}
		return nil
	}

	for _, item := range items {
		err := s.inventory.Decrement(ctx, item.LocalID, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Warn("inventory_shortfall", "Stock not decremented", in.OrderID, map[string]interface{}{
				"product_id": item.ProductID,
				"local_id":   item.LocalID,
				"quantity":   item.Quantity,
				"reason":     err.Error(),
			})
			continue
		}
		return err
	}
	return nil
}

// normalizeItems drops lines with no product, defaults quantity to one
// and falls back to the order's branch when a line names none.
func normalizeItems(in interfaces.StageInput) []domain.OrderItem {
	var items []domain.OrderItem
	for _, item := range in.Items {
		if item.ProductID == "" {
			continue
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		localID := item.LocalID
		if localID == "" {
			localID = in.LocalID
		}
		items = append(items, domain.OrderItem{ProductID: item.ProductID, LocalID: localID, Quantity: qty})
	}
	return items
}

// closePrevious ends the currently open ledger entry. Absence of one is
// the normal first-stage case, not an error.
func (s *Service) closePrevious(ctx context.Context, orderID string, at time.Time) error {
	prev, err := s.history.LatestOpen(ctx, orderID)
	if errors.Is(err, domain.ErrNoOpenEntry) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.history.Close(ctx, orderID, prev.Seq, at)
}

func (s *Service) openEntry(ctx context.Context, in interfaces.StageInput, stage domain.Stage, taskToken string, at time.Time) error {
	entry := &domain.StateHistoryEntry{
		OrderID:    in.OrderID,
		Stage:      stage,
		StartedAt:  at,
		EmployeeID: in.EmployeeID,
		TaskToken:  taskToken,
		Details:    marshalDetails(in),
	}
	return s.history.Append(ctx, entry)
}

// markStatus sets the order status. A missing order row is tolerated:
// intake is a separate service and the ledger remains the source of truth.
func (s *Service) markStatus(ctx context.Context, in interfaces.StageInput, stage domain.Stage) error {
	err := s.orders.UpdateStatus(ctx, in.LocalID, in.OrderID, stage, in.EmployeeID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		s.logger.Warn("order_missing", "Order record not found for status update", in.OrderID, map[string]interface{}{
			"local_id": in.LocalID,
			"status":   string(stage),
		})
		return nil
	}
	return err
}

// observe flags out-of-order driver invocations. The driver owns the
// topology, so a mismatch is logged, never rejected.
func (s *Service) observe(ctx context.Context, in interfaces.StageInput, event string) {
	order, err := s.orders.Find(ctx, in.LocalID, in.OrderID)
	if err != nil {
		return
	}
	if !s.stages.CanAdvance(order.Status, event) {
		s.logger.Warn("unexpected_transition", fmt.Sprintf("Event %s not expected from stage %s", event, order.Status), in.OrderID, map[string]interface{}{
			"current_status": string(order.Status),
			"event":          event,
		})
	}
}

func normalize(req interfaces.StageRequest, defaultEmployee string) (interfaces.StageInput, error) {
	in := req.Input
	if in.OrderID == "" {
		return in, domain.ErrMissingOrderID
	}
	if in.LocalID == "" {
		in.LocalID = domain.DefaultLocalID
	}
	if in.EmployeeID == "" {
		in.EmployeeID = defaultEmployee
	}
	return in, nil
}

func marshalDetails(in interfaces.StageInput) string {
	b, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return string(b)
}
