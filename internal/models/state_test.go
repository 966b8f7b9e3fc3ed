package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		raw  string
		want State
		ok   bool
	}{
		{"", StateAll, true},
		{"ALL", StateAll, true},
		{"CURRENT", StateCurrent, true},
		{"PAST", StatePast, true},
		{"FUTURE", StateFuture, true},
		{"WAITING", StateWaiting, true},
		{"REJECTED", StateRejected, true},
		{"APPROVED", "", false},
		{"all", "", false},
		{"BANANAS", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseState(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}
