package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStates = []ParticipantState{
	StateWaitlisted, StateBooked, StateCheckedIn, StateNoShow, StateCancelled,
}

func TestParticipantStateClassification(t *testing.T) {
	tests := []struct {
		state    ParticipantState
		terminal bool
		roster   bool
		active   bool
	}{
		{StateWaitlisted, false, false, true},
		{StateBooked, false, true, true},
		{StateCheckedIn, true, true, true},
		{StateNoShow, true, true, true},
		{StateCancelled, true, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.Terminal())
			assert.Equal(t, tt.roster, tt.state.OnRoster())
			assert.Equal(t, tt.active, tt.state.Active())
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := map[ParticipantState][]ParticipantState{
		StateWaitlisted: {StateBooked, StateCancelled},
		StateBooked:     {StateCheckedIn, StateNoShow, StateCancelled},
	}
	for _, from := range allStates {
		for _, to := range allStates {
			want := false
			for _, ok := range allowed[from] {
				if to == ok {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range allStates {
		if !from.Terminal() {
			continue
		}
		for _, to := range allStates {
			assert.False(t, from.CanTransitionTo(to), "terminal %s must not reach %s", from, to)
		}
	}
}
