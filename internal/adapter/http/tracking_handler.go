package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, lgr logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  lgr,
	}
}

// HandleOrders serves GET /orders/{localID}/{orderID}/status and
// GET /orders/{localID}/{orderID}/history.
func (h *TrackingHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	localID, orderID := parts[1], parts[2]

	switch parts[3] {
	case "status":
		h.getOrderStatus(w, r, localID, orderID)
	case "history":
		h.getOrderHistory(w, r, localID, orderID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *TrackingHandler) getOrderStatus(w http.ResponseWriter, r *http.Request, localID, orderID string) {
	result, err := h.service.GetOrderStatus(r.Context(), localID, orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"order_id":          result.OrderID,
		"local_id":          result.LocalID,
		"current_status":    result.CurrentStatus,
		"assigned_employee": result.AssignedEmployee,
		"updated_at":        result.UpdatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *TrackingHandler) getOrderHistory(w http.ResponseWriter, r *http.Request, localID, orderID string) {
	history, err := h.service.GetOrderHistory(r.Context(), localID, orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	resp := make([]map[string]interface{}, len(history))
	for i, entry := range history {
		resp[i] = map[string]interface{}{
			"stage":       entry.Stage,
			"started_at":  entry.StartedAt,
			"ended_at":    entry.EndedAt,
			"employee_id": entry.EmployeeID,
			"details":     entry.Details,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
