package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Warn(string, string, string, map[string]interface{})         {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type stubOrders struct {
	order *domain.Order
}

func (s *stubOrders) Find(_ context.Context, localID, orderID string) (*domain.Order, error) {
	if s.order == nil || s.order.LocalID != localID || s.order.OrderID != orderID {
		return nil, domain.ErrOrderNotFound
	}
	return s.order, nil
}

func (s *stubOrders) UpdateStatus(context.Context, string, string, domain.Stage, string) error {
	return nil
}

type stubHistory struct {
	entries []*domain.StateHistoryEntry
}

func (s *stubHistory) Append(context.Context, *domain.StateHistoryEntry) error { return nil }

func (s *stubHistory) LatestOpen(context.Context, string) (*domain.StateHistoryEntry, error) {
	return nil, domain.ErrNoOpenEntry
}

func (s *stubHistory) Close(context.Context, string, int64, time.Time) error { return nil }

func (s *stubHistory) ListByOrder(_ context.Context, orderID string) ([]*domain.StateHistoryEntry, error) {
	var out []*domain.StateHistoryEntry
	for _, e := range s.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestGetOrderStatus(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{
		LocalID:          "L1",
		OrderID:          "O1",
		Status:           domain.StagePackaging,
		AssignedEmployee: domain.EmployeePackaging,
		UpdatedAt:        time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}}
	svc := NewService(orders, &stubHistory{}, nopLogger{})

	resp, err := svc.GetOrderStatus(context.Background(), "L1", "O1")
	require.NoError(t, err)
	assert.Equal(t, "O1", resp.OrderID)
	assert.Equal(t, domain.StagePackaging, resp.CurrentStatus)
	assert.Equal(t, domain.EmployeePackaging, resp.AssignedEmployee)
}

func TestGetOrderStatusDefaultsLocal(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{
		LocalID: domain.DefaultLocalID,
		OrderID: "O1",
		Status:  domain.StageProcessing,
	}}
	svc := NewService(orders, &stubHistory{}, nopLogger{})

	resp, err := svc.GetOrderStatus(context.Background(), "", "O1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLocalID, resp.LocalID)
}

func TestGetOrderStatusNotFound(t *testing.T) {
	svc := NewService(&stubOrders{}, &stubHistory{}, nopLogger{})

	_, err := svc.GetOrderStatus(context.Background(), "L1", "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrderHistory(t *testing.T) {
	history := &stubHistory{entries: []*domain.StateHistoryEntry{
		{Seq: 1, OrderID: "O1", Stage: domain.StageInKitchen},
		{Seq: 2, OrderID: "O2", Stage: domain.StagePackaging},
		{Seq: 3, OrderID: "O1", Stage: domain.StagePackaging},
	}}
	svc := NewService(&stubOrders{}, history, nopLogger{})

	entries, err := svc.GetOrderHistory(context.Background(), "L1", "O1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, int64(3), entries[1].Seq)
}

func TestGetOrderHistoryUnknownOrder(t *testing.T) {
	svc := NewService(&stubOrders{}, &stubHistory{}, nopLogger{})

	_, err := svc.GetOrderHistory(context.Background(), "L1", "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrderHistoryExistingOrderWithoutEntries(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{
		LocalID: "L1",
		OrderID: "O1",
		Status:  domain.StageProcessing,
	}}
	svc := NewService(orders, &stubHistory{}, nopLogger{})

	entries, err := svc.GetOrderHistory(context.Background(), "L1", "O1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
