package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageValid(t *testing.T) {
	for _, s := range []Stage{StageProcessing, StageInKitchen, StagePackaging, StageOutForDelivery, StageReceived} {
		assert.True(t, s.Valid(), string(s))
	}
	for _, s := range []Stage{"", "cancelado", "PROCESANDO"} {
		assert.False(t, s.Valid(), string(s))
	}
}

func TestStateHistoryEntryOpen(t *testing.T) {
	entry := StateHistoryEntry{OrderID: "O1", Stage: StageInKitchen, StartedAt: time.Now()}
	assert.True(t, entry.Open())

	ended := time.Now()
	entry.EndedAt = &ended
	assert.False(t, entry.Open())
}
