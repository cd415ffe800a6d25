package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days [date]",
		Short: "Show day reports",
		Long: `Without arguments, show a summary row per day with visits.
With a date, show that day's totals and visits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDays,
	}
}

func runDays(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()

	if len(args) == 0 {
		days, err := c.ListDays()
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(out, days)
		}
		return printDayTable(out, days)
	}

	d, err := c.GetDay(args[0])
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(out, d)
	}

	printDaySummary(out, d.DayReport)
	if err := printVisitTable(out, d.Items); err != nil {
		return err
	}
	if d.HasPending {
		fmt.Fprintf(out, "\n%d pending. Run 'vp close-day %s' to move them to the next days with room.\n",
			d.PendingVisits, d.Date)
	}
	return nil
}
