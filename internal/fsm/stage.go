package fsm

import (
	"context"
	"errors"
	"sync"

	"github.com/looplab/fsm"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
)

// Events accepted by the stage machine. Each event corresponds to one
// forward-moving handler; KitchenFinish is a self-loop because the kitchen
// phase spans two ledger intervals (entered and done).
const (
	EventKitchenStart  = "kitchen_start"
	EventKitchenFinish = "kitchen_finish"
	EventPack          = "pack"
	EventShip          = "ship"
	EventDeliver       = "deliver"
)

// StageMachine validates forward stage transitions. The workflow driver
// owns the real topology; the machine is used to spot out-of-order
// invocations, not to reject them.
type StageMachine struct {
	fsm *fsm.FSM
	mu  sync.Mutex
}

func NewStageMachine() *StageMachine {
	sm := &StageMachine{}
	sm.fsm = fsm.NewFSM(
		string(domain.StageProcessing),
		fsm.Events{
			{Name: EventKitchenStart, Src: []string{string(domain.StageProcessing)}, Dst: string(domain.StageInKitchen)},
			{Name: EventKitchenFinish, Src: []string{string(domain.StageInKitchen)}, Dst: string(domain.StageInKitchen)},
			{Name: EventPack, Src: []string{string(domain.StageInKitchen)}, Dst: string(domain.StagePackaging)},
			{Name: EventShip, Src: []string{string(domain.StagePackaging)}, Dst: string(domain.StageOutForDelivery)},
			{Name: EventDeliver, Src: []string{string(domain.StageOutForDelivery)}, Dst: string(domain.StageReceived)},
		},
		fsm.Callbacks{},
	)
	return sm
}

// CanAdvance reports whether event is a valid forward move from current.
func (sm *StageMachine) CanAdvance(current domain.Stage, event string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.fsm.SetState(string(current))
	return sm.fsm.Can(event)
}

// Advance applies event from current and returns the destination stage.
func (sm *StageMachine) Advance(ctx context.Context, current domain.Stage, event string) (domain.Stage, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.fsm.SetState(string(current))
	if err := sm.fsm.Event(ctx, event); err != nil {
		// looplab/fsm reports a self-loop (Src == Dst, e.g. KitchenFinish)
		// with NoTransitionError even though the event is valid.
		var nt fsm.NoTransitionError
		if !errors.As(err, &nt) {
			return "", err
		}
	}
	return domain.Stage(sm.fsm.Current()), nil
}

// AvailableEvents lists the forward events permitted from current.
func (sm *StageMachine) AvailableEvents(current domain.Stage) []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.fsm.SetState(string(current))
	return sm.fsm.AvailableTransitions()
}
