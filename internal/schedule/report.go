package schedule

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/evcraddock/visit-planner/internal/visit"
)

// Color is the completion signal of a day.
type Color string

const (
	ColorAlert   Color = "alert"
	ColorNeutral Color = "neutral"
	ColorGood    Color = "good"
)

// DayGroup is the set of visits sharing one day, in input order.
type DayGroup struct {
	Date   string        `json:"date"`
	Visits []visit.Visit `json:"visits"`
}

// GroupByDate groups visits by day, ordered by ascending date.
func GroupByDate(visits []visit.Visit) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, v := range visits {
		day := v.Day()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Visits = append(groups[i].Visits, v)
	}

	slices.SortStableFunc(groups, func(a, b DayGroup) int {
		return strings.Compare(a.Date, b.Date)
	})
	return groups
}

// VisitsOn returns the visits on day, in input order.
func VisitsOn(visits []visit.Visit, day string) []visit.Visit {
	day = visit.DateOnly(day)
	var out []visit.Visit
	for _, v := range visits {
		if v.Day() == day {
			out = append(out, v)
		}
	}
	return out
}

// HasPending reports whether any visit on day is still pending.
func HasPending(visits []visit.Visit, day string) bool {
	day = visit.DateOnly(day)
	for _, v := range visits {
		if v.Day() == day && v.Status == visit.StatusPending {
			return true
		}
	}
	return false
}

// ScheduledPercentage returns the share of the day's capacity in use.
// It exceeds 100 when the day is over capacity.
func (r Rules) ScheduledPercentage(visits []visit.Visit, day string) int {
	return percent(r.TotalScheduledMinutes(visits, day), r.MaxMinutesPerDay)
}

// CompletedPercentage returns the share of the day's scheduled minutes
// already completed, or 0 when nothing is scheduled.
func (r Rules) CompletedPercentage(visits []visit.Visit, day string) int {
	return percent(r.TotalCompletedMinutes(visits, day), r.TotalScheduledMinutes(visits, day))
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// CompletionColor buckets a completion percentage. Both thresholds are
// exclusive: AlertBelow and GoodAbove themselves are neutral.
func (r Rules) CompletionColor(pct int) Color {
	switch {
	case pct < r.AlertBelow:
		return ColorAlert
	case pct > r.GoodAbove:
		return ColorGood
	default:
		return ColorNeutral
	}
}

// DayReport summarizes one day's progress.
type DayReport struct {
	Date                string `json:"date"`
	Visits              int    `json:"visits"`
	PendingVisits       int    `json:"pending_visits"`
	ScheduledMinutes    int    `json:"scheduled_minutes"`
	CompletedMinutes    int    `json:"completed_minutes"`
	AvailableMinutes    int    `json:"available_minutes"`
	ScheduledPercentage int    `json:"scheduled_percentage"`
	CompletedPercentage int    `json:"completed_percentage"`
	Color               Color  `json:"color"`
	HasPending          bool   `json:"has_pending"`
}

// Report builds the progress report for day.
func (r Rules) Report(visits []visit.Visit, day string) DayReport {
	day = visit.DateOnly(day)
	rep := DayReport{Date: day}
	for _, v := range visits {
		if v.Day() != day {
			continue
		}
		rep.Visits++
		d := r.VisitDuration(v)
		rep.ScheduledMinutes += d
		if v.Status == visit.StatusCompleted {
			rep.CompletedMinutes += d
		} else {
			rep.PendingVisits++
		}
	}
	rep.AvailableMinutes = r.MaxMinutesPerDay - rep.ScheduledMinutes
	rep.ScheduledPercentage = percent(rep.ScheduledMinutes, r.MaxMinutesPerDay)
	rep.CompletedPercentage = percent(rep.CompletedMinutes, rep.ScheduledMinutes)
	rep.Color = r.CompletionColor(rep.CompletedPercentage)
	rep.HasPending = rep.PendingVisits > 0
	return rep
}

// Reports builds a report for every day that has visits, in date order.
func (r Rules) Reports(visits []visit.Visit) []DayReport {
	groups := GroupByDate(visits)
	reports := make([]DayReport, 0, len(groups))
	for _, g := range groups {
		reports = append(reports, r.Report(g.Visits, g.Date))
	}
	return reports
}

// FormatMinutes renders minutes as hours and minutes, e.g. 90 -> "1h 30min".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	hours := minutes / 60
	mins := minutes % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%s%dmin", sign, mins)
	case mins == 0:
		return fmt.Sprintf("%s%dh", sign, hours)
	default:
		return fmt.Sprintf("%s%dh %dmin", sign, hours, mins)
	}
}
