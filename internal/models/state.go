package models

// State selects a temporal/status subset of bookings in list queries.
// It is a closed enumeration; anything outside it must be rejected at the
// boundary before reaching the query layer.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState validates a raw state filter. The empty string defaults to ALL.
func ParseState(raw string) (State, bool) {
	if raw == "" {
		return StateAll, true
	}
	switch State(raw) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return State(raw), true
	}
	return "", false
}
