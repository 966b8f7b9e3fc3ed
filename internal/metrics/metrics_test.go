package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegisterIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()
	assert.NotPanics(t, func() {
		ObserveHTTP("GET /bookings", "200", 15*time.Millisecond)
		IncBookingCreated()
		IncBookingDecision("APPROVED")
		IncBookingDecision("REJECTED")
	})
}
