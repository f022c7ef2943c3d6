package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingMatched, true},
		{BookingMatched, BookingConfirmed, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingFailed, false},
		{BookingMatched, BookingCompleted, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, BookingCompleted.IsTerminal())
	assert.False(t, BookingConfirmed.IsTerminal())
}
