package visit

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit. Kept untyped so they convert to
// statekit.StateID and compare against Status values.
const (
	statePending   = "pending"
	stateCompleted = "completed"
)

// EventComplete marks a pending visit as done.
const EventComplete = "complete"

// ErrInvalidTransition is returned when an event is not allowed in the
// visit's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

func init() {
	if statePending != string(StatusPending) || stateCompleted != string(StatusCompleted) {
		panic("visit lifecycle states are out of sync with Status values")
	}
}

type lifecycleContext struct {
	VisitID string
}

// Transition applies event to a visit in status from and returns the
// resulting status.
func Transition(visitID string, from Status, event string) (Status, error) {
	if !from.IsValid() {
		return "", fmt.Errorf("visit %s: %w: unknown status %q", visitID, ErrInvalidTransition, from)
	}

	builder := statekit.NewMachine[lifecycleContext]("visit-lifecycle").
		WithInitial(statekit.StateID(from)).
		WithContext(lifecycleContext{VisitID: visitID})

	builder.State(statePending).
		On(EventComplete).Target(stateCompleted).
		Done()

	// Completed is terminal; completing again leaves the state unchanged
	// and is rejected below.
	builder.State(stateCompleted).
		On(EventComplete).Target(stateCompleted).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("building visit lifecycle: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	interpreter.Send(statekit.Event{Type: statekit.EventType(event)})

	after := Status(interpreter.State().Value)
	if after == from {
		return "", fmt.Errorf("visit %s: %w: %q is not allowed while %s", visitID, ErrInvalidTransition, event, from)
	}
	return after, nil
}

// Complete returns a copy of v marked completed.
func Complete(v Visit) (Visit, error) {
	next, err := Transition(v.ID, v.Status, EventComplete)
	if err != nil {
		return Visit{}, err
	}
	v.Status = next
	return v, nil
}
