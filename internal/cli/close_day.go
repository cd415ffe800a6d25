package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCloseDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close-day <date>",
		Short: "Close a day and move its pending visits",
		Long: `Close a day. Every visit still pending on it moves to the earliest
following day with enough time left. Completed visits stay.`,
		Args: cobra.ExactArgs(1),
		RunE: runCloseDay,
	}
}

func runCloseDay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()
	p := newPrompter(cmd)

	day, err := c.GetDay(args[0])
	if err != nil {
		return err
	}

	if !day.HasPending {
		if isJSON() {
			return printJSON(out, map[string]any{"date": day.Date, "relocated": []any{}})
		}
		p.Notify("Nothing to move", fmt.Sprintf("%s has no pending visits", day.Date), NotifyInfo)
		return nil
	}

	if !p.Confirm("Close day "+day.Date, fmt.Sprintf("Move %d pending visits to the next days with room?", day.PendingVisits)) {
		return errCanceled
	}

	res, err := c.CloseDay(day.Date)
	if err != nil {
		if !isJSON() {
			p.Notify("Could not close day", err.Error(), NotifyError)
		}
		return fmt.Errorf("closing day: %w", err)
	}

	if isJSON() {
		return printJSON(out, res)
	}

	p.Notify("Day closed", fmt.Sprintf("%d visits moved", len(res.Relocated)), NotifySuccess)
	for _, v := range res.Relocated {
		fmt.Fprintf(out, "  %s -> %s (%s)\n", v.ID, v.Date, dayHeader(v.Date))
	}
	return nil
}
