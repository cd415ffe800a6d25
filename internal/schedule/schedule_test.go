package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/visit-planner/internal/visit"
)

func pending(id, date string, forms, products int) visit.Visit {
	return visit.Visit{ID: id, Date: date, Status: visit.StatusPending, FormCount: forms, ProductCount: products}
}

func completed(id, date string, forms, products int) visit.Visit {
	v := pending(id, date, forms, products)
	v.Status = visit.StatusCompleted
	return v
}

func TestDuration(t *testing.T) {
	r := DefaultRules()
	for forms := 0; forms <= 40; forms++ {
		for products := 0; products <= 40; products++ {
			got := r.Duration(forms, products)
			require.Equal(t, forms*15+products*5, got)
			require.GreaterOrEqual(t, got, 0)
		}
	}
	assert.Equal(t, 70, r.Duration(3, 5))
	assert.Equal(t, 70, r.Duration(4, 2))
}

func TestDurationCustomRules(t *testing.T) {
	r := DefaultRules()
	r.MinutesPerForm = 20
	r.MinutesPerProduct = 1
	assert.Equal(t, 43, r.Duration(2, 3))
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := []func(*Rules){
		func(r *Rules) { r.MaxMinutesPerDay = 0 },
		func(r *Rules) { r.MinutesPerForm = -1 },
		func(r *Rules) { r.AlertBelow, r.GoodAbove = 95, 90 },
		func(r *Rules) { r.MaxSearchDays = 0 },
	}
	for i, mutate := range bad {
		r := DefaultRules()
		mutate(&r)
		assert.Error(t, r.Validate(), "case %d", i)
	}
}

func TestTotals(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("a", "2024-01-10", 3, 5),                 // 70
		completed("b", "2024-01-10T08:00:00.000Z", 2, 3), // 45
		completed("c", "2024-01-11", 10, 0),              // other day
		pending("d", "2024-01-10", 0, 1),                 // 5
	}

	assert.Equal(t, 120, r.TotalScheduledMinutes(visits, "2024-01-10"))
	assert.Equal(t, 45, r.TotalCompletedMinutes(visits, "2024-01-10"))
	assert.Equal(t, 150, r.TotalScheduledMinutes(visits, "2024-01-11"))
	assert.Equal(t, 0, r.TotalScheduledMinutes(visits, "2024-01-12"))
	assert.Equal(t, 120, r.TotalScheduledMinutes(visits, "2024-01-10T23:00:00Z"), "time of day is ignored")
}

func TestScheduledNeverBelowCompleted(t *testing.T) {
	r := DefaultRules()
	rng := rand.New(rand.NewSource(7))
	days := []string{"2024-01-10", "2024-01-11", "2024-01-12"}

	for round := 0; round < 200; round++ {
		var visits []visit.Visit
		n := rng.Intn(12)
		for i := 0; i < n; i++ {
			v := pending(fmt.Sprint(i), days[rng.Intn(len(days))], rng.Intn(10), rng.Intn(20))
			if rng.Intn(2) == 0 {
				v.Status = visit.StatusCompleted
			}
			visits = append(visits, v)
		}
		for _, d := range days {
			require.GreaterOrEqual(t, r.TotalScheduledMinutes(visits, d), r.TotalCompletedMinutes(visits, d))
		}
	}
}

func TestCanAddScenario(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("a", "2024-01-10", 3, 5)}

	got := r.CanAdd(visits, "2024-01-10", 4, 2, "")
	assert.Equal(t, Decision{Allowed: true, AvailableMinutes: 410, RequiredMinutes: 70}, got)
	assert.Equal(t, 0, got.Shortfall())
}

func TestCanAddRejects(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("a", "2024-01-10", 30, 0)} // 450

	got := r.CanAdd(visits, "2024-01-10", 2, 1, "") // 35
	assert.False(t, got.Allowed)
	assert.Equal(t, 30, got.AvailableMinutes)
	assert.Equal(t, 35, got.RequiredMinutes)
	assert.Equal(t, 5, got.Shortfall())
}

func TestCanAddExactFit(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("a", "2024-01-10", 30, 0)}

	assert.True(t, r.CanAdd(visits, "2024-01-10", 2, 0, "").Allowed)
}

func TestCanAddOverCapacityIsNotClamped(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("a", "2024-01-10", 34, 0)} // 510

	got := r.CanAdd(visits, "2024-01-10", 0, 0, "")
	assert.False(t, got.Allowed)
	assert.Equal(t, -30, got.AvailableMinutes)
}

func TestCanAddExcludesEditedVisit(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("a", "2024-01-10", 20, 0), // 300
		pending("b", "2024-01-10", 10, 0), // 150
	}

	assert.False(t, r.CanAdd(visits, "2024-01-10", 12, 0, "").Allowed)

	got := r.CanAdd(visits, "2024-01-10", 12, 0, "b")
	assert.True(t, got.Allowed)
	assert.Equal(t, 180, got.AvailableMinutes)
}

func TestCanAddIgnoresOtherDays(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("a", "2024-01-09", 32, 0)}

	got := r.CanAdd(visits, "2024-01-10", 32, 0, "")
	assert.True(t, got.Allowed)
	assert.Equal(t, 480, got.AvailableMinutes)
}

func TestCanAddMonotonic(t *testing.T) {
	r := DefaultRules()
	const forms, products = 3, 4

	var visits []visit.Visit
	prev := r.CanAdd(visits, "2024-01-10", forms, products, "")
	for i := 0; i < 40; i++ {
		visits = append(visits, pending(fmt.Sprint(i), "2024-01-10", 1, i%3))
		next := r.CanAdd(visits, "2024-01-10", forms, products, "")

		require.LessOrEqual(t, next.AvailableMinutes, prev.AvailableMinutes)
		if !prev.Allowed {
			require.False(t, next.Allowed, "allowed must never flip back to true")
		}
		require.Equal(t, prev.RequiredMinutes, next.RequiredMinutes)
		prev = next
	}
	assert.False(t, prev.Allowed)
}

func TestGroupByDate(t *testing.T) {
	visits := []visit.Visit{
		pending("a", "2024-01-11", 1, 0),
		pending("b", "2024-01-10", 1, 0),
		completed("c", "2024-01-11T10:00:00Z", 1, 0),
	}

	groups := GroupByDate(visits)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-01-10", groups[0].Date)
	require.Len(t, groups[0].Visits, 1)
	assert.Equal(t, "b", groups[0].Visits[0].ID)

	assert.Equal(t, "2024-01-11", groups[1].Date)
	require.Len(t, groups[1].Visits, 2)
	assert.Equal(t, "a", groups[1].Visits[0].ID)
	assert.Equal(t, "c", groups[1].Visits[1].ID)
}

func TestGroupByDateEmpty(t *testing.T) {
	assert.Empty(t, GroupByDate(nil))
}

func TestVisitsOn(t *testing.T) {
	visits := []visit.Visit{
		pending("a", "2024-01-11", 1, 0),
		pending("b", "2024-01-10", 1, 0),
		pending("c", "2024-01-11", 1, 0),
	}
	got := VisitsOn(visits, "2024-01-11")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestPercentages(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		completed("a", "2024-01-10", 8, 0), // 120
		pending("b", "2024-01-10", 8, 0),   // 120
		pending("c", "2024-01-11", 40, 0),  // 600
		completed("d", "2024-01-12", 1, 0), // 15
		pending("e", "2024-01-12", 2, 0),   // 30
	}

	assert.Equal(t, 50, r.ScheduledPercentage(visits, "2024-01-10"))
	assert.Equal(t, 50, r.CompletedPercentage(visits, "2024-01-10"))
	assert.Equal(t, 125, r.ScheduledPercentage(visits, "2024-01-11"), "unclamped over capacity")
	assert.Equal(t, 0, r.CompletedPercentage(visits, "2024-01-11"))
	assert.Equal(t, 33, r.CompletedPercentage(visits, "2024-01-12"))
	assert.Equal(t, 9, r.ScheduledPercentage(visits, "2024-01-12"))
}

func TestCompletedPercentageRoundsHalfUp(t *testing.T) {
	r := DefaultRules()
	// 5 of 40 scheduled minutes -> 12.5% -> 13
	visits := []visit.Visit{
		completed("a", "2024-01-10", 0, 1),
		pending("b", "2024-01-10", 0, 7),
	}
	assert.Equal(t, 13, r.CompletedPercentage(visits, "2024-01-10"))
}

func TestCompletedPercentageVacuous(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 0, r.CompletedPercentage(nil, "2024-01-10"))

	// zero-minute completed visits: nothing scheduled, still 0
	visits := []visit.Visit{completed("a", "2024-01-10", 0, 0)}
	assert.Equal(t, 0, r.CompletedPercentage(visits, "2024-01-10"))
}

func TestCompletionColor(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		pct  int
		want Color
	}{
		{0, ColorAlert},
		{59, ColorAlert},
		{60, ColorNeutral},
		{75, ColorNeutral},
		{90, ColorNeutral},
		{91, ColorGood},
		{100, ColorGood},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.CompletionColor(tt.pct), "CompletionColor(%d)", tt.pct)
	}
}

func TestCompletionColorCustomThresholds(t *testing.T) {
	r := DefaultRules()
	r.AlertBelow, r.GoodAbove = 50, 80
	assert.Equal(t, ColorNeutral, r.CompletionColor(50))
	assert.Equal(t, ColorGood, r.CompletionColor(81))
}

func TestHasPending(t *testing.T) {
	visits := []visit.Visit{
		completed("a", "2024-01-10", 1, 0),
		pending("b", "2024-01-11", 1, 0),
	}
	assert.False(t, HasPending(visits, "2024-01-10"))
	assert.True(t, HasPending(visits, "2024-01-11"))
	assert.False(t, HasPending(visits, "2024-01-12"))
}

func TestReport(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		completed("a", "2024-01-10", 20, 0), // 300
		pending("b", "2024-01-10", 2, 0),    // 30
		pending("c", "2024-01-11", 2, 0),
	}

	rep := r.Report(visits, "2024-01-10")
	assert.Equal(t, DayReport{
		Date:                "2024-01-10",
		Visits:              2,
		PendingVisits:       1,
		ScheduledMinutes:    330,
		CompletedMinutes:    300,
		AvailableMinutes:    150,
		ScheduledPercentage: 69,
		CompletedPercentage: 91,
		Color:               ColorGood,
		HasPending:          true,
	}, rep)
}

func TestReports(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("a", "2024-01-12", 1, 0),
		completed("b", "2024-01-10", 1, 0),
	}

	reps := r.Reports(visits)
	require.Len(t, reps, 2)
	assert.Equal(t, "2024-01-10", reps[0].Date)
	assert.False(t, reps[0].HasPending)
	assert.Equal(t, 100, reps[0].CompletedPercentage)
	assert.Equal(t, "2024-01-12", reps[1].Date)
	assert.True(t, reps[1].HasPending)
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0min"},
		{45, "45min"},
		{60, "1h"},
		{90, "1h 30min"},
		{480, "8h"},
		{-30, "-30min"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.in), "FormatMinutes(%d)", tt.in)
	}
}

func TestRelocateNothingPending(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		completed("a", "2024-01-10", 5, 0),
		pending("b", "2024-01-11", 5, 0),
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, visits, got)

	got, err = r.CloseDayAndRelocate(nil, "2024-01-10")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRelocateToNextDay(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		completed("done", "2024-01-10", 26, 0), // 390
		pending("p", "2024-01-10", 4, 0),       // 60
		pending("next", "2024-01-11", 28, 0),   // 420
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "done", got[0].ID)
	assert.Equal(t, "2024-01-10", got[0].Date, "completed visits never move")
	assert.Equal(t, "next", got[1].ID)
	assert.Equal(t, "p", got[2].ID)
	assert.Equal(t, "2024-01-11", got[2].Date)
	assert.Equal(t, visit.StatusPending, got[2].Status)
	assert.Equal(t, 480, r.TotalScheduledMinutes(got, "2024-01-11"))

	assert.Equal(t, "2024-01-10", visits[1].Date, "input must not change")
}

func TestRelocateSkipsFullDay(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		completed("done", "2024-01-10", 26, 0), // 390
		pending("p", "2024-01-10", 4, 0),       // 60
		pending("full", "2024-01-11", 31, 1),   // 470
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "p", got[2].ID)
	assert.Equal(t, "2024-01-12", got[2].Date)
}

func TestRelocateCursorNeverMovesBack(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("big", "2024-01-10", 20, 0),  // 300
		pending("small", "2024-01-10", 2, 0), // 30
		pending("busy", "2024-01-11", 14, 0), // 210, leaves 270
		pending("later", "2024-01-12", 0, 0),
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)

	byID := map[string]visit.Visit{}
	for _, v := range got {
		byID[v.ID] = v
	}
	// big does not fit on the 11th; small would, but the cursor is already on the 12th.
	assert.Equal(t, "2024-01-12", byID["big"].Date)
	assert.Equal(t, "2024-01-12", byID["small"].Date)
	assert.Equal(t, []string{"busy", "later", "big", "small"}, ids(got))
}

func TestRelocateSharesDayWhenRoom(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("a", "2024-01-10", 10, 0),
		pending("b", "2024-01-10", 10, 0),
		pending("c", "2024-01-10", 12, 0),
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", got[0].Date)
	assert.Equal(t, "2024-01-11", got[1].Date)
	assert.Equal(t, "2024-01-11", got[2].Date)
	assert.Equal(t, 480, r.TotalScheduledMinutes(got, "2024-01-11"))
}

func TestRelocateAcrossMonthEnd(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{
		pending("p", "2024-02-28", 4, 0),
		pending("full", "2024-02-29", 32, 0),
	}

	got, err := r.CloseDayAndRelocate(visits, "2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got[1].Date)
}

func TestRelocateOversizedVisit(t *testing.T) {
	r := DefaultRules()
	visits := []visit.Visit{pending("huge", "2024-01-10", 33, 0)} // 495

	_, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCannotRelocate))

	var cre *CannotRelocateError
	require.True(t, errors.As(err, &cre))
	assert.Equal(t, "huge", cre.VisitID)
	assert.Equal(t, 495, cre.Duration)
}

func TestRelocateSearchHorizon(t *testing.T) {
	r := DefaultRules()
	r.MaxSearchDays = 3
	visits := []visit.Visit{
		pending("p", "2024-01-10", 4, 0),
		pending("f1", "2024-01-11", 32, 0),
		pending("f2", "2024-01-12", 32, 0),
		pending("f3", "2024-01-13", 32, 0),
	}

	_, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	var cre *CannotRelocateError
	require.True(t, errors.As(err, &cre))
	assert.Equal(t, 3, cre.Scanned)
	assert.Equal(t, "2024-01-11", cre.From)

	r.MaxSearchDays = 4
	got, err := r.CloseDayAndRelocate(visits, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", got[3].Date)
}

func TestRelocateInvalidDay(t *testing.T) {
	_, err := DefaultRules().CloseDayAndRelocate(nil, "tomorrow")
	assert.Error(t, err)
}

func TestRelocateKeepsCapacity(t *testing.T) {
	r := DefaultRules()
	rng := rand.New(rand.NewSource(42))
	days := []string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13"}

	for round := 0; round < 300; round++ {
		var visits []visit.Visit
		for i := 0; i < 30; i++ {
			day := days[rng.Intn(len(days))]
			forms, products := rng.Intn(12), rng.Intn(30)
			if !r.CanAdd(visits, day, forms, products, "").Allowed {
				continue
			}
			v := pending(fmt.Sprintf("%d-%d", round, i), day, forms, products)
			if rng.Intn(3) == 0 {
				v.Status = visit.StatusCompleted
			}
			visits = append(visits, v)
		}

		closing := days[rng.Intn(len(days))]
		got, err := r.CloseDayAndRelocate(visits, closing)
		require.NoError(t, err)
		require.Len(t, got, len(visits))

		for _, g := range GroupByDate(got) {
			require.LessOrEqual(t, r.TotalScheduledMinutes(got, g.Date), r.MaxMinutesPerDay, "day %s", g.Date)
		}
		assert.False(t, HasPending(got, closing))
		for _, v := range got {
			if v.Status == visit.StatusPending {
				assert.NotEqual(t, closing, v.Date)
			}
		}
	}
}

func ids(visits []visit.Visit) []string {
	out := make([]string, 0, len(visits))
	for _, v := range visits {
		out = append(out, v.ID)
	}
	return out
}
