package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/visit-planner/internal/schedule"
	"github.com/evcraddock/visit-planner/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dayHeader renders a date as e.g. "Wednesday, 10 Jan 2024".
func dayHeader(date string) string {
	t, err := time.Parse(visit.DateLayout, visit.DateOnly(date))
	if err != nil {
		return date
	}
	return t.Format("Monday, 02 Jan 2006")
}

// formatAddress renders an address on one line, skipping empty parts.
func formatAddress(a visit.Address) string {
	street := a.Street
	if a.Number != "" {
		if street != "" {
			street += ", "
		}
		street += a.Number
	}
	if a.Complement != "" {
		street += " (" + a.Complement + ")"
	}

	var parts []string
	for _, p := range []string{street, a.Neighborhood, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, " - ")
	if a.State != "" {
		if line != "" {
			line += "/"
		}
		line += a.State
	}
	if a.PostalCode != "" {
		if line != "" {
			line += " "
		}
		line += "CEP " + a.PostalCode
	}
	if line == "" {
		return "-"
	}
	return line
}

// colorMarker returns a short symbol for a completion color.
func colorMarker(c schedule.Color) string {
	switch c {
	case schedule.ColorAlert:
		return "▼"
	case schedule.ColorGood:
		return "▲"
	default:
		return "■"
	}
}

// printDaySummary prints the one-line totals of a day.
func printDaySummary(w io.Writer, r schedule.DayReport) {
	fmt.Fprintf(w, "%s  (%s)\n", dayHeader(r.Date), r.Date)
	fmt.Fprintf(w, "  Scheduled: %s of the day (%d%%), %s free\n",
		schedule.FormatMinutes(r.ScheduledMinutes), r.ScheduledPercentage,
		schedule.FormatMinutes(r.AvailableMinutes))
	fmt.Fprintf(w, "  Completed: %s (%d%%) %s\n",
		schedule.FormatMinutes(r.CompletedMinutes), r.CompletedPercentage, colorMarker(r.Color))
}

// printVisitSummary prints a single visit in text format.
func printVisitSummary(w io.Writer, v *visit.Visit) {
	fmt.Fprintf(w, "Visit %s\n", v.ID)
	fmt.Fprintf(w, "  Date:     %s (%s)\n", v.Date, dayHeader(v.Date))
	fmt.Fprintf(w, "  Status:   %s\n", v.Status.Label())
	fmt.Fprintf(w, "  Forms:    %d\n", v.FormCount)
	fmt.Fprintf(w, "  Products: %d\n", v.ProductCount)
	fmt.Fprintf(w, "  Address:  %s\n", formatAddress(v.Address))
}

// printVisitTable prints visits as a formatted table.
func printVisitTable(w io.Writer, visits []visit.Visit) error {
	if len(visits) == 0 {
		fmt.Fprintln(w, "No visits found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "  ID\tSTATUS\tFORMS\tPRODUCTS\tADDRESS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, v := range visits {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%s\n",
			truncate(v.ID, 12), v.Status.Label(), v.FormCount, v.ProductCount,
			truncate(formatAddress(v.Address), 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printDayTable prints day reports as a formatted table.
func printDayTable(w io.Writer, days []schedule.DayReport) error {
	if len(days) == 0 {
		fmt.Fprintln(w, "No visits scheduled.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "DATE\tVISITS\tPENDING\tSCHEDULED\tFREE\tDONE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "----\t------\t-------\t---------\t----\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}
	for _, d := range days {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%s (%d%%)\t%s\t%d%% %s\n",
			d.Date, d.Visits, d.PendingVisits,
			schedule.FormatMinutes(d.ScheduledMinutes), d.ScheduledPercentage,
			schedule.FormatMinutes(d.AvailableMinutes),
			d.CompletedPercentage, colorMarker(d.Color)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d days\n", len(days))
	return nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
