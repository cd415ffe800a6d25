package schedule

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/evcraddock/visit-planner/internal/visit"
)

// ErrCannotRelocate is wrapped by CannotRelocateError.
var ErrCannotRelocate = errors.New("cannot relocate visit")

// CannotRelocateError reports a pending visit for which no day with enough
// room was found.
type CannotRelocateError struct {
	VisitID  string
	Duration int
	From     string // first candidate day
	Scanned  int    // candidate days tested
	Reason   string
}

func (e *CannotRelocateError) Error() string {
	return fmt.Sprintf("%v %s (%s) from %s: %s",
		ErrCannotRelocate, e.VisitID, FormatMinutes(e.Duration), e.From, e.Reason)
}

func (e *CannotRelocateError) Unwrap() error {
	return ErrCannotRelocate
}

// CloseDayAndRelocate moves every pending visit on day to the earliest
// following day that can hold it, and returns the new collection: all
// other visits first, in input order, then the relocated ones.
//
// Pending visits are placed in input order. The search cursor starts the
// day after day and never moves back, so a later visit never lands before
// an earlier one. Completed visits never move. When there is nothing to
// relocate a copy of visits is returned.
//
// On error the input is left as is and no partial result is returned.
func (r Rules) CloseDayAndRelocate(visits []visit.Visit, day string) ([]visit.Visit, error) {
	day, err := visit.ParseDate(day)
	if err != nil {
		return nil, fmt.Errorf("parsing day to close: %w", err)
	}
	closed, err := time.Parse(visit.DateLayout, day)
	if err != nil {
		return nil, fmt.Errorf("parsing day to close: %w", err)
	}

	var unchanged, toRelocate []visit.Visit
	for _, v := range visits {
		if v.Day() == day && v.Status == visit.StatusPending {
			toRelocate = append(toRelocate, v)
		} else {
			unchanged = append(unchanged, v)
		}
	}

	if len(toRelocate) == 0 {
		return slices.Clone(visits), nil
	}

	// Minutes in use per day across unchanged and already placed visits.
	load := make(map[string]int)
	for _, v := range unchanged {
		load[v.Day()] += r.VisitDuration(v)
	}

	cursor := closed.AddDate(0, 0, 1)
	placed := make([]visit.Visit, 0, len(toRelocate))
	for _, v := range toRelocate {
		d := r.VisitDuration(v)
		if d > r.MaxMinutesPerDay {
			return nil, &CannotRelocateError{
				VisitID:  v.ID,
				Duration: d,
				From:     cursor.Format(visit.DateLayout),
				Reason:   fmt.Sprintf("longer than a whole day (%s)", FormatMinutes(r.MaxMinutesPerDay)),
			}
		}

		from := cursor
		scanned := 1
		for load[cursor.Format(visit.DateLayout)]+d > r.MaxMinutesPerDay {
			if scanned >= r.MaxSearchDays {
				return nil, &CannotRelocateError{
					VisitID:  v.ID,
					Duration: d,
					From:     from.Format(visit.DateLayout),
					Scanned:  scanned,
					Reason:   fmt.Sprintf("no day with room within %d days", r.MaxSearchDays),
				}
			}
			cursor = cursor.AddDate(0, 0, 1)
			scanned++
		}

		target := cursor.Format(visit.DateLayout)
		v.Date = target
		load[target] += d
		placed = append(placed, v)
	}

	result := make([]visit.Visit, 0, len(visits))
	result = append(result, unchanged...)
	result = append(result, placed...)
	return result, nil
}
