package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/schedule"
)

func newListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visits grouped by day",
		Long:  "List all visits grouped by day in date order, with each day's scheduled and completed time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, date)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "only list visits on this day (YYYY-MM-DD)")

	return cmd
}

func runList(cmd *cobra.Command, date string) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()

	visits, err := c.ListVisits(date)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out, visits)
	}

	if len(visits) == 0 {
		fmt.Fprintln(out, "No visits found.")
		return nil
	}

	days, err := c.ListDays()
	if err != nil {
		return err
	}
	reports := make(map[string]schedule.DayReport, len(days))
	for _, d := range days {
		reports[d.Date] = d
	}

	for i, g := range schedule.GroupByDate(visits) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if r, ok := reports[g.Date]; ok {
			printDaySummary(out, r)
		} else {
			fmt.Fprintf(out, "%s  (%s)\n", dayHeader(g.Date), g.Date)
		}
		if err := printVisitTable(out, g.Visits); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nTotal: %d visits\n", len(visits))
	return nil
}
