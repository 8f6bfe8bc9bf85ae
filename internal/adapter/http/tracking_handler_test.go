package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

type stubTracking struct {
	status  *interfaces.TrackingOrderResponse
	history []*domain.StateHistoryEntry
	err     error
}

func (s *stubTracking) GetOrderStatus(context.Context, string, string) (*interfaces.TrackingOrderResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

func (s *stubTracking) GetOrderHistory(context.Context, string, string) ([]*domain.StateHistoryEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func newTrackingServer(svc *stubTracking) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", NewTrackingHandler(svc, nopLogger{}).HandleOrders)
	return httptest.NewServer(mux)
}

func TestTrackingStatus(t *testing.T) {
	svc := &stubTracking{status: &interfaces.TrackingOrderResponse{
		OrderID:          "O1",
		LocalID:          "L1",
		CurrentStatus:    domain.StageOutForDelivery,
		AssignedEmployee: domain.EmployeeDelivery,
		UpdatedAt:        time.Now(),
	}}
	srv := newTrackingServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/orders/L1/O1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "O1", payload["order_id"])
	assert.Equal(t, string(domain.StageOutForDelivery), payload["current_status"])
}

func TestTrackingHistory(t *testing.T) {
	svc := &stubTracking{history: []*domain.StateHistoryEntry{
		{Seq: 1, OrderID: "O1", Stage: domain.StageInKitchen, EmployeeID: domain.EmployeeKitchen},
		{Seq: 2, OrderID: "O1", Stage: domain.StagePackaging, EmployeeID: domain.EmployeePackaging},
	}}
	srv := newTrackingServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/orders/L1/O1/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload, 2)
	assert.Equal(t, string(domain.StageInKitchen), payload[0]["stage"])
	assert.Equal(t, string(domain.StagePackaging), payload[1]["stage"])
}

func TestTrackingNotFound(t *testing.T) {
	srv := newTrackingServer(&stubTracking{err: domain.ErrOrderNotFound})
	defer srv.Close()

	for _, path := range []string{"/orders/L1/missing/status", "/orders/L1/missing/history"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestTrackingRejectsPost(t *testing.T) {
	srv := newTrackingServer(&stubTracking{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/orders/L1/O1/status", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
