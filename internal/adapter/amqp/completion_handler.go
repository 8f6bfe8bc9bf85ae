package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/adapter/logger"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

// CompletionHandler reacts to terminal order notifications. The actual
// customer email lives in a separate service; this subscriber records the
// event and prints it for operators.
type CompletionHandler struct {
	logger logger.Logger
}

func NewCompletionHandler(lgr logger.Logger) *CompletionHandler {
	return &CompletionHandler{
		logger: lgr,
	}
}

func (h *CompletionHandler) HandleCompletion(ctx context.Context, body []byte) error {
	var event interfaces.CompletionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse completion event", "", nil, err)
		return err
	}

	h.logger.Info("completion_received", fmt.Sprintf("Order %s completed", event.OrderID),
		event.OrderID, map[string]interface{}{
			"timestamp": event.Timestamp,
		})

	fmt.Printf("Order %s completed at %s: %s\n",
		event.OrderID, event.Timestamp.Format("2006-01-02 15:04:05"), event.Message)

	return nil
}
