package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

// StageHandler exposes the fulfillment handlers to the workflow driver.
// Each endpoint is one callback of the driver's topology.
type StageHandler struct {
	service interfaces.FulfillmentService
	logger  logger.Logger
}

func NewStageHandler(service interfaces.FulfillmentService, lgr logger.Logger) *StageHandler {
	return &StageHandler{
		service: service,
		logger:  lgr,
	}
}

type stageFunc func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error)

// Register wires the stage endpoints into mux.
func (h *StageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/stages/entering-kitchen", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.EnterKitchen(r.Context(), req)
	}))
	mux.HandleFunc("/stages/kitchen-complete", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.CompleteKitchen(r.Context(), req)
	}))
	mux.HandleFunc("/stages/packaging", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.Package(r.Context(), req)
	}))
	mux.HandleFunc("/stages/delivery", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.StartDelivery(r.Context(), req)
	}))
	mux.HandleFunc("/stages/delivery-complete", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.CompleteDelivery(r.Context(), req)
	}))
	mux.HandleFunc("/stages/kitchen-retry", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.RetryKitchen(r.Context(), req)
	}))
	mux.HandleFunc("/stages/delivery-retry", h.stage(func(r *http.Request, req interfaces.StageRequest) (*interfaces.StageResult, error) {
		return h.service.RetryDelivery(r.Context(), req)
	}))
}

func (h *StageHandler) stage(fn stageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req interfaces.StageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := fn(r, req)
		if err != nil {
			if errors.Is(err, domain.ErrMissingOrderID) {
				h.respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.logger.Error("stage_handler_failed", "Stage transition failed", req.Input.OrderID, map[string]interface{}{
				"path": r.URL.Path,
			}, err)
			h.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func (h *StageHandler) respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
