package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a visit completed",
		Args:  cobra.ExactArgs(1),
		RunE:  runComplete,
	}
}

func runComplete(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()
	p := newPrompter(cmd)

	v, err := c.GetVisit(args[0])
	if err != nil {
		return err
	}

	if !p.Confirm("Complete visit", fmt.Sprintf("Mark visit %s on %s as completed? This cannot be undone.", v.ID, v.Date)) {
		return errCanceled
	}

	done, err := c.CompleteVisit(v.ID)
	if err != nil {
		return fmt.Errorf("completing visit: %w", err)
	}

	if isJSON() {
		return printJSON(out, done)
	}

	p.Notify("Visit completed", done.ID, NotifySuccess)
	return nil
}
