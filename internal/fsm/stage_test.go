package fsm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
)

func TestAdvanceValidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.Stage
		event string
		want  domain.Stage
	}{
		{"processing to kitchen", domain.StageProcessing, EventKitchenStart, domain.StageInKitchen},
		{"kitchen finish stays in kitchen", domain.StageInKitchen, EventKitchenFinish, domain.StageInKitchen},
		{"kitchen to packaging", domain.StageInKitchen, EventPack, domain.StagePackaging},
		{"packaging to delivery", domain.StagePackaging, EventShip, domain.StageOutForDelivery},
		{"delivery to received", domain.StageOutForDelivery, EventDeliver, domain.StageReceived},
	}

	sm := NewStageMachine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sm.Advance(context.Background(), tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceRejectsSkips(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.Stage
		event string
	}{
		{"cannot pack before kitchen", domain.StageProcessing, EventPack},
		{"cannot ship from kitchen", domain.StageInKitchen, EventShip},
		{"cannot deliver from packaging", domain.StagePackaging, EventDeliver},
		{"cannot re-enter kitchen from packaging", domain.StagePackaging, EventKitchenStart},
		{"no moves out of received", domain.StageReceived, EventKitchenStart},
	}

	sm := NewStageMachine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sm.CanAdvance(tt.from, tt.event))
			_, err := sm.Advance(context.Background(), tt.from, tt.event)
			assert.Error(t, err)
		})
	}
}

func TestAvailableEventsPerStage(t *testing.T) {
	sm := NewStageMachine()

	assert.ElementsMatch(t, []string{EventKitchenStart}, sm.AvailableEvents(domain.StageProcessing))
	assert.ElementsMatch(t, []string{EventKitchenFinish, EventPack}, sm.AvailableEvents(domain.StageInKitchen))
	assert.ElementsMatch(t, []string{EventShip}, sm.AvailableEvents(domain.StagePackaging))
	assert.ElementsMatch(t, []string{EventDeliver}, sm.AvailableEvents(domain.StageOutForDelivery))
	assert.Empty(t, sm.AvailableEvents(domain.StageReceived))
}
