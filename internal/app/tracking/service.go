package tracking

import (
	"context"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

// Service answers read-only questions about an order's progress. It never
// writes; the fulfillment handlers own all mutations.
type Service struct {
	orders  interfaces.OrderRepository
	history interfaces.HistoryRepository
	logger  logger.Logger
}

func NewService(orders interfaces.OrderRepository, history interfaces.HistoryRepository, lgr logger.Logger) *Service {
	return &Service{
		orders:  orders,
		history: history,
		logger:  lgr,
	}
}

var _ interfaces.TrackingService = (*Service)(nil)

func (s *Service) GetOrderStatus(ctx context.Context, localID, orderID string) (*interfaces.TrackingOrderResponse, error) {
	if localID == "" {
		localID = domain.DefaultLocalID
	}
	order, err := s.orders.Find(ctx, localID, orderID)
	if err != nil {
		return nil, err
	}

	return &interfaces.TrackingOrderResponse{
		OrderID:          order.OrderID,
		LocalID:          order.LocalID,
		CurrentStatus:    order.Status,
		AssignedEmployee: order.AssignedEmployee,
		UpdatedAt:        order.UpdatedAt,
	}, nil
}

// GetOrderHistory lists the ledger entries of an order. An order with no
// entries is only answered when the order itself exists; an unknown order
// is ErrOrderNotFound, not an empty history.
func (s *Service) GetOrderHistory(ctx context.Context, localID, orderID string) ([]*domain.StateHistoryEntry, error) {
	if localID == "" {
		localID = domain.DefaultLocalID
	}
	entries, err := s.history.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if _, err := s.orders.Find(ctx, localID, orderID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
