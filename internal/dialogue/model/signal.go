package model

// Signal is an action's optional implicit trigger, consumed once by the
// engine against the destination node's transitions.
type Signal struct {
	name string
}

// NoSignal means the action does not request chaining.
var NoSignal = Signal{}

// Emit returns a signal carrying the given trigger.
func Emit(name string) Signal {
	return Signal{name: name}
}

// Name returns the trigger and whether one is present.
func (s Signal) Name() (string, bool) {
	return s.name, s.name != ""
}

const (
	SignalFound    = "found"
	SignalNotFound = "not_found"
)
