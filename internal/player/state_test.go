package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Predicates(t *testing.T) {
	cases := []struct {
		state                    State
		name                     string
		hasSource, pause, resume bool
	}{
		{Stopped, "Stopped", false, false, false},
		{Loading, "Loading", false, false, false},
		{Ready, "Ready", true, false, true},
		{Playing, "Playing", true, true, false},
		{Paused, "Paused", true, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.name, c.state.String())
			assert.Equal(t, c.hasSource, c.state.HasSource(), "HasSource")
			assert.Equal(t, c.pause, c.state.CanPause(), "CanPause")
			assert.Equal(t, c.resume, c.state.CanResume(), "CanResume")
		})
	}
}

func TestState_UnknownValues(t *testing.T) {
	assert.Equal(t, "Unknown", State(99).String())
	assert.False(t, State(99).HasSource())
	assert.Equal(t, "TimeUpdate", EventTimeUpdate.String())
	assert.Equal(t, "Unknown", EventType(42).String())
}
