package planner

import (
	"errors"
	"fmt"

	"github.com/evcraddock/visit-planner/internal/schedule"
)

var (
	// ErrNotFound is returned for an unknown visit id.
	ErrNotFound = errors.New("visit not found")
	// ErrInvalidInput wraps validation failures of caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLookupUnavailable is returned when no address lookup is configured.
	ErrLookupUnavailable = errors.New("address lookup not configured")
)

// CapacityError reports a visit that does not fit on its day.
type CapacityError struct {
	Date     string
	Decision schedule.Decision
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough time on %s: visit needs %s, %s available",
		e.Date,
		schedule.FormatMinutes(e.Decision.RequiredMinutes),
		schedule.FormatMinutes(e.Decision.AvailableMinutes))
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
