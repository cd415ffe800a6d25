package schedule

import "github.com/evcraddock/visit-planner/internal/visit"

// Duration returns the minute cost of a visit with the given workload.
func (r Rules) Duration(formCount, productCount int) int {
	return formCount*r.MinutesPerForm + productCount*r.MinutesPerProduct
}

// VisitDuration returns the minute cost of v.
func (r Rules) VisitDuration(v visit.Visit) int {
	return r.Duration(v.FormCount, v.ProductCount)
}

// TotalScheduledMinutes sums the durations of all visits on day,
// regardless of status.
func (r Rules) TotalScheduledMinutes(visits []visit.Visit, day string) int {
	day = visit.DateOnly(day)
	total := 0
	for _, v := range visits {
		if v.Day() == day {
			total += r.VisitDuration(v)
		}
	}
	return total
}

// TotalCompletedMinutes sums the durations of completed visits on day.
func (r Rules) TotalCompletedMinutes(visits []visit.Visit, day string) int {
	day = visit.DateOnly(day)
	total := 0
	for _, v := range visits {
		if v.Day() == day && v.Status == visit.StatusCompleted {
			total += r.VisitDuration(v)
		}
	}
	return total
}

// Decision is the outcome of a capacity check.
type Decision struct {
	Allowed          bool `json:"allowed"`
	AvailableMinutes int  `json:"available_minutes"` // may be negative when the day is already over capacity
	RequiredMinutes  int  `json:"required_minutes"`
}

// Shortfall returns how many minutes are missing for the visit to fit.
func (d Decision) Shortfall() int {
	if d.Allowed {
		return 0
	}
	return d.RequiredMinutes - d.AvailableMinutes
}

// CanAdd reports whether a visit with the given workload fits on day.
// The visit with ID excludeID, if any, is left out of the day's total so
// an edit does not count its own previous size.
func (r Rules) CanAdd(visits []visit.Visit, day string, formCount, productCount int, excludeID string) Decision {
	day = visit.DateOnly(day)
	current := 0
	for _, v := range visits {
		if excludeID != "" && v.ID == excludeID {
			continue
		}
		if v.Day() == day {
			current += r.VisitDuration(v)
		}
	}

	required := r.Duration(formCount, productCount)
	return Decision{
		Allowed:          current+required <= r.MaxMinutesPerDay,
		AvailableMinutes: r.MaxMinutesPerDay - current,
		RequiredMinutes:  required,
	}
}
