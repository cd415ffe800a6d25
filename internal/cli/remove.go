package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a visit",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]
	p := newPrompter(cmd)

	if !p.Confirm("Remove visit", fmt.Sprintf("Remove visit %s?", id)) {
		return errCanceled
	}

	if err := newAPIClient().DeleteVisit(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      id,
			"removed": true,
		})
	}

	p.Notify("Visit removed", id, NotifySuccess)
	return nil
}
