// Package schedule implements the capacity rules for day-based visit
// scheduling: visit duration, per-day totals, the capacity check, day
// reports, and relocation of pending visits off a closed day.
//
// Every function is pure. Visit slices passed in are never modified;
// operations that change the collection return a new slice.
package schedule

import "fmt"

// Default rule values.
const (
	MinutesPerForm    = 15
	MinutesPerProduct = 5
	MaxMinutesPerDay  = 8 * 60
	AlertBelow        = 60
	GoodAbove         = 90
	MaxSearchDays     = 366
)

// Rules is the single configuration surface for scheduling arithmetic.
type Rules struct {
	MinutesPerForm    int
	MinutesPerProduct int
	MaxMinutesPerDay  int

	// Completion color thresholds, in percent.
	AlertBelow int
	GoodAbove  int

	// MaxSearchDays bounds how many candidate days relocation scans for a
	// single visit.
	MaxSearchDays int
}

// DefaultRules returns the standard 8-hour day rules.
func DefaultRules() Rules {
	return Rules{
		MinutesPerForm:    MinutesPerForm,
		MinutesPerProduct: MinutesPerProduct,
		MaxMinutesPerDay:  MaxMinutesPerDay,
		AlertBelow:        AlertBelow,
		GoodAbove:         GoodAbove,
		MaxSearchDays:     MaxSearchDays,
	}
}

// Validate checks that the rules are usable.
func (r Rules) Validate() error {
	if r.MinutesPerForm < 0 || r.MinutesPerProduct < 0 {
		return fmt.Errorf("minutes per form and per product must not be negative")
	}
	if r.MaxMinutesPerDay <= 0 {
		return fmt.Errorf("max minutes per day must be positive, got %d", r.MaxMinutesPerDay)
	}
	if r.AlertBelow > r.GoodAbove {
		return fmt.Errorf("alert threshold %d is above good threshold %d", r.AlertBelow, r.GoodAbove)
	}
	if r.MaxSearchDays <= 0 {
		return fmt.Errorf("max search days must be positive, got %d", r.MaxSearchDays)
	}
	return nil
}
